package repositories

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// NotificationReader defines read operations for notification data
type NotificationReader interface {
	// ListNotificationsForRecipient returns the user's notifications inside the organization, newest first.
	ListNotificationsForRecipient(ctx context.Context, organizationID, userID string, limit int) ([]domain.Notification, error)
}

// NotificationWriter defines write operations for notification data
type NotificationWriter interface {
	// SaveNotifications persists a batch of notifications in one write.
	SaveNotifications(ctx context.Context, notifications []domain.Notification) error

	// MarkNotificationRead returns the updated notification, or apperrors.ErrNotFound when it is not visible to the user.
	MarkNotificationRead(ctx context.Context, organizationID, userID, notificationID string) (*domain.Notification, error)

	// DeleteNotificationsVisibleTo removes every notification addressed to the user or held by the
	// organization and reports how many rows went.
	DeleteNotificationsVisibleTo(ctx context.Context, organizationID, userID string) (int64, error)
}

// NotificationRepositoryFacade combines all notification-related repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}
