package memory

import (
	"context"
	"strings"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
)

type OrganizationRepository struct {
	store *Store
}

var _ portsrepo.OrganizationRepositoryFacade = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	org, ok := r.store.organizations[organizationID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &org, nil
}

func (r *OrganizationRepository) SaveOrganizationWithAdmin(ctx context.Context, org domain.Organization, admin domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.organizations {
		if strings.EqualFold(existing.Name, org.Name) {
			return apperrors.NewConflictError("organization name already taken")
		}
	}
	if _, exists := r.store.organizations[org.OrganizationID]; exists {
		return apperrors.NewConflictError("organization id already exists")
	}
	if err := r.store.checkUserInsertLocked(admin); err != nil {
		return err
	}

	r.store.organizations[org.OrganizationID] = org
	r.store.users[admin.UserID] = admin
	return nil
}

func (r *OrganizationRepository) DeleteOrganization(ctx context.Context, organizationID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.organizations[organizationID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.organizations, organizationID)
	for id, u := range r.store.users {
		if u.OrganizationID == organizationID {
			delete(r.store.users, id)
		}
	}
	for id, v := range r.store.vouchers {
		if v.OrganizationID == organizationID {
			delete(r.store.vouchers, id)
		}
	}
	for id, n := range r.store.notifications {
		if n.OrganizationID == organizationID {
			delete(r.store.notifications, id)
		}
	}
	return nil
}
