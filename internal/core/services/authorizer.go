package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
)

// roleAuthorizer implements the role policy. Identity is always reloaded from
// the user store so role changes and deletions take effect on the next request.
type roleAuthorizer struct {
	userRepo portsrepo.UserReader
}

// NewAuthorizer creates the authorizer used by every service.
func NewAuthorizer(userRepo portsrepo.UserReader) portssvc.AuthorizerSvc {
	return &roleAuthorizer{userRepo: userRepo}
}

var _ portssvc.AuthorizerSvc = (*roleAuthorizer)(nil)

func (a *roleAuthorizer) ResolveIdentity(ctx context.Context, userID string) (domain.Identity, error) {
	if userID == "" {
		return domain.Identity{}, apperrors.ErrUnauthorized
	}
	user, err := a.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Identity{}, fmt.Errorf("%w: user no longer exists", apperrors.ErrUnauthorized)
		}
		middleware.GetLoggerFromCtx(ctx).Error("Failed to resolve identity", slog.String("error", err.Error()), slog.String("user_id", userID))
		return domain.Identity{}, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return user.Identity(), nil
}

func (a *roleAuthorizer) Authorize(ctx context.Context, identity domain.Identity, action domain.Action, voucher *domain.Voucher) error {
	// Tenant isolation comes first: another organization's voucher does not exist for this caller.
	if voucher != nil && voucher.OrganizationID != identity.OrganizationID {
		return apperrors.ErrNotFound
	}

	deny := apperrors.NewAuthorizationError(string(identity.Role), string(action))

	switch action {
	case domain.ActionCreateVoucher:
		if identity.IsStaff() {
			return nil
		}
		return deny

	case domain.ActionViewVoucher:
		if identity.IsStaff() && (voucher == nil || voucher.StaffID != identity.UserID) {
			return deny
		}
		return nil

	case domain.ActionListVouchers:
		return nil

	case domain.ActionApproveVoucher, domain.ActionRejectVoucher, domain.ActionPostNotification:
		if identity.IsAdmin() {
			return nil
		}
		return deny

	case domain.ActionPayVoucher:
		if identity.IsAccountant() {
			return nil
		}
		return deny

	case domain.ActionListUsers:
		if identity.IsAdmin() || identity.IsAccountant() {
			return nil
		}
		return deny

	case domain.ActionManageUsers, domain.ActionDeleteOrganization:
		if !identity.IsAdmin() {
			return deny
		}
		isMain, err := a.isMainAdmin(ctx, identity)
		if err != nil {
			return err
		}
		if !isMain {
			return deny
		}
		return nil
	}

	return deny
}

func (a *roleAuthorizer) isMainAdmin(ctx context.Context, identity domain.Identity) (bool, error) {
	admins, err := a.userRepo.ListUsersByRoles(ctx, identity.OrganizationID, domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to load organization admins: %w", err)
	}
	mainAdmin, ok := domain.MainAdmin(admins)
	return ok && mainAdmin.UserID == identity.UserID, nil
}
