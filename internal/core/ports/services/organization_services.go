package services

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
)

// OrganizationSvcFacade defines tenant lifecycle operations
type OrganizationSvcFacade interface {
	// RegisterOrganization creates an organization and its main admin in one step.
	RegisterOrganization(ctx context.Context, req dto.RegisterRequest) (*domain.Organization, *domain.User, error)

	// GetOrganization returns the requesting user's organization.
	GetOrganization(ctx context.Context, requestingUserID string) (*domain.Organization, error)

	// DeleteOrganization removes the requesting main admin's organization with all its data.
	DeleteOrganization(ctx context.Context, requestingUserID string) error
}
