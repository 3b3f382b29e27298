package services

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// AuthorizerSvc resolves who a caller is and decides what they may do.
type AuthorizerSvc interface {
	// ResolveIdentity loads the caller's current role and organization from the store.
	// Unknown or deleted users yield apperrors.ErrUnauthorized.
	ResolveIdentity(ctx context.Context, userID string) (domain.Identity, error)

	// Authorize checks action against the identity's role. voucher may be nil for non-voucher actions.
	// A voucher outside the identity's organization yields apperrors.ErrNotFound, a role mismatch apperrors.ErrForbidden.
	Authorize(ctx context.Context, identity domain.Identity, action domain.Action, voucher *domain.Voucher) error
}
