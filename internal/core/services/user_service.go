package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/utils"
	"github.com/google/uuid"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, authorizer portssvc.AuthorizerSvc) portssvc.UserSvcFacade {
	return &userService{
		BaseService: BaseService{Authorizer: authorizer},
		userRepo:    userRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, requestingUserID string, req dto.CreateUserRequest) (*domain.User, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionManageUsers)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req).OrNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.CurrentTime()
	user := domain.User{
		UserID:         uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           req.Role,
		OrganizationID: identity.OrganizationID,
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save user", slog.String("user_id", user.UserID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userService) RenameUser(ctx context.Context, requestingUserID, targetUserID string, req dto.UpdateUserRequest) (*domain.User, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionManageUsers)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req).OrNil(); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateUserName(ctx, identity.OrganizationID, targetUserID, req.Name, s.CurrentTime()); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "User renamed", slog.String("user_id", targetUserID))
	return s.userRepo.FindUserByID(ctx, targetUserID)
}

func (s *userService) DeleteUser(ctx context.Context, requestingUserID, targetUserID string) error {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionManageUsers)
	if err != nil {
		return err
	}
	if targetUserID == identity.UserID {
		return apperrors.NewAuthorizationError(string(identity.Role), "delete the main admin")
	}

	if err := s.userRepo.DeleteUser(ctx, identity.OrganizationID, targetUserID); err != nil {
		return err
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", targetUserID))
	return nil
}

func (s *userService) ListUsers(ctx context.Context, requestingUserID string) ([]domain.User, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionListUsers)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListUsersByOrganization(ctx, identity.OrganizationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users", slog.String("organization_id", identity.OrganizationID))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// AuthenticateUser answers ErrUnauthorized for both unknown emails and wrong passwords.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	return user, nil
}
