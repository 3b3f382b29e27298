package services

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListUsers returns the requesting user's organization members. Admins and accountants only.
	ListUsers(ctx context.Context, requestingUserID string) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data. Only the main admin may call them.
type UserWriterSvc interface {
	// CreateUser adds a member to the main admin's organization.
	CreateUser(ctx context.Context, requestingUserID string, req dto.CreateUserRequest) (*domain.User, error)

	// RenameUser changes a member's name.
	RenameUser(ctx context.Context, requestingUserID, targetUserID string, req dto.UpdateUserRequest) (*domain.User, error)

	// DeleteUser removes a member. The main admin cannot delete themselves.
	DeleteUser(ctx context.Context, requestingUserID, targetUserID string) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
