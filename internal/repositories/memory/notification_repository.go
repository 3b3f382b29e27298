package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
)

type NotificationRepository struct {
	store *Store
}

var _ portsrepo.NotificationRepositoryFacade = (*NotificationRepository)(nil)

// SaveNotifications validates the whole batch before storing any of it.
func (r *NotificationRepository) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, n := range notifications {
		if _, ok := r.store.notifications[n.NotificationID]; ok {
			return apperrors.NewConflictError("notification id already exists")
		}
		if u, ok := r.store.users[n.RecipientID]; !ok || u.OrganizationID != n.OrganizationID {
			return apperrors.NewNotFoundError("recipient does not exist")
		}
	}
	for _, n := range notifications {
		r.store.notifications[n.NotificationID] = copyNotification(n)
	}
	return nil
}

func (r *NotificationRepository) ListNotificationsForRecipient(ctx context.Context, organizationID, userID string, limit int) ([]domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	feed := make([]domain.Notification, 0)
	for _, n := range r.store.notifications {
		if n.OrganizationID == organizationID && n.RecipientID == userID {
			feed = append(feed, copyNotification(n))
		}
	}
	sort.Slice(feed, func(i, j int) bool {
		if feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].NotificationID > feed[j].NotificationID
		}
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	return feed, nil
}

func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, organizationID, userID, notificationID string) (*domain.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[notificationID]
	if !ok || n.OrganizationID != organizationID || n.RecipientID != userID {
		return nil, apperrors.ErrNotFound
	}
	n.Read = true
	r.store.notifications[notificationID] = n
	updated := copyNotification(n)
	return &updated, nil
}

func (r *NotificationRepository) DeleteNotificationsVisibleTo(ctx context.Context, organizationID, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, n := range r.store.notifications {
		if n.RecipientID == userID || n.OrganizationID == organizationID {
			delete(r.store.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
