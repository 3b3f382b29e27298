package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their (globally unique) email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsersByOrganization returns the organization's users ordered by creation time, then ID.
	ListUsersByOrganization(ctx context.Context, organizationID string) ([]domain.User, error)

	// ListUsersByRoles returns the organization's users holding any of the given roles.
	ListUsersByRoles(ctx context.Context, organizationID string, roles ...domain.Role) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUserName renames a user of the given organization.
	UpdateUserName(ctx context.Context, organizationID, userID, name string, now time.Time) error

	// DeleteUser removes a user of the given organization.
	DeleteUser(ctx context.Context, organizationID, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
