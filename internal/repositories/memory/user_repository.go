package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
)

type UserRepository struct {
	store *Store
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// checkUserInsertLocked enforces the same constraints as the users table. Caller holds the write lock.
func (s *Store) checkUserInsertLocked(user domain.User) error {
	if _, ok := s.users[user.UserID]; ok {
		return apperrors.NewConflictError("user id already exists")
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperrors.NewConflictError("email already registered")
		}
	}
	return nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) ListUsersByOrganization(ctx context.Context, organizationID string) ([]domain.User, error) {
	return r.filter(organizationID, func(domain.User) bool { return true }), nil
}

func (r *UserRepository) ListUsersByRoles(ctx context.Context, organizationID string, roles ...domain.Role) ([]domain.User, error) {
	wanted := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}
	return r.filter(organizationID, func(u domain.User) bool { return wanted[u.Role] }), nil
}

func (r *UserRepository) filter(organizationID string, keep func(domain.User) bool) []domain.User {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]domain.User, 0)
	for _, u := range r.store.users {
		if u.OrganizationID == organizationID && keep(u) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].UserID < users[j].UserID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.organizations[user.OrganizationID]; !ok {
		return apperrors.NewNotFoundError("organization does not exist")
	}
	if err := r.store.checkUserInsertLocked(user); err != nil {
		return err
	}
	r.store.users[user.UserID] = user
	return nil
}

func (r *UserRepository) UpdateUserName(ctx context.Context, organizationID, userID, name string, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]
	if !ok || u.OrganizationID != organizationID {
		return apperrors.ErrNotFound
	}
	u.Name = name
	u.LastUpdatedAt = now
	r.store.users[userID] = u
	return nil
}

// DeleteUser also drops the user's notifications, mirroring the recipient foreign key.
func (r *UserRepository) DeleteUser(ctx context.Context, organizationID, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[userID]
	if !ok || u.OrganizationID != organizationID {
		return apperrors.ErrNotFound
	}
	delete(r.store.users, userID)
	for id, n := range r.store.notifications {
		if n.RecipientID == userID {
			delete(r.store.notifications, id)
		}
	}
	return nil
}
