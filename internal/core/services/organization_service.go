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

type organizationService struct {
	BaseService
	organizationRepo portsrepo.OrganizationRepositoryFacade
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(organizationRepo portsrepo.OrganizationRepositoryFacade, authorizer portssvc.AuthorizerSvc) portssvc.OrganizationSvcFacade {
	return &organizationService{
		BaseService:      BaseService{Authorizer: authorizer},
		organizationRepo: organizationRepo,
	}
}

var _ portssvc.OrganizationSvcFacade = (*organizationService)(nil)

// RegisterOrganization creates the tenant and its main admin atomically.
func (s *organizationService) RegisterOrganization(ctx context.Context, req dto.RegisterRequest) (*domain.Organization, *domain.User, error) {
	req.OrganizationName = strings.TrimSpace(req.OrganizationName)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req).OrNil(); err != nil {
		return nil, nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.CurrentTime()
	admin := domain.User{
		UserID:        uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	org := domain.Organization{
		OrganizationID: uuid.NewString(),
		Name:           req.OrganizationName,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	admin.OrganizationID = org.OrganizationID

	if err := s.organizationRepo.SaveOrganizationWithAdmin(ctx, org, admin); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to register organization", slog.String("organization_name", org.Name))
		}
		return nil, nil, err
	}

	s.LogInfo(ctx, "Organization registered",
		slog.String("organization_id", org.OrganizationID),
		slog.String("admin_id", admin.UserID))
	return &org, &admin, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, requestingUserID string) (*domain.Organization, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	return s.organizationRepo.FindOrganizationByID(ctx, identity.OrganizationID)
}

// DeleteOrganization removes the tenant together with its users, vouchers and notifications.
func (s *organizationService) DeleteOrganization(ctx context.Context, requestingUserID string) error {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionDeleteOrganization)
	if err != nil {
		return err
	}
	if err := s.organizationRepo.DeleteOrganization(ctx, identity.OrganizationID); err != nil {
		s.LogError(ctx, err, "Failed to delete organization", slog.String("organization_id", identity.OrganizationID))
		return err
	}
	s.LogInfo(ctx, "Organization deleted", slog.String("organization_id", identity.OrganizationID), slog.String("user_id", identity.UserID))
	return nil
}
