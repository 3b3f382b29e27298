package repositories

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// OrganizationReader defines read operations for organization data
type OrganizationReader interface {
	// FindOrganizationByID retrieves a specific organization by its ID.
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
}

// OrganizationWriter defines write operations for organization data
type OrganizationWriter interface {
	// SaveOrganizationWithAdmin persists a new organization together with its first admin.
	// Either both are stored or neither is. Name or email collisions return apperrors.ErrDuplicate.
	SaveOrganizationWithAdmin(ctx context.Context, org domain.Organization, admin domain.User) error

	// DeleteOrganization removes the organization and everything that belongs to it.
	DeleteOrganization(ctx context.Context, organizationID string) error
}

// OrganizationRepositoryFacade combines all organization-related repository interfaces
type OrganizationRepositoryFacade interface {
	OrganizationReader
	OrganizationWriter
}
