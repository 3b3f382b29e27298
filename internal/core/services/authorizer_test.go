package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizer_Policy(t *testing.T) {
	ctx := context.Background()
	ts := seedTenants(t)
	authorizer := services.NewAuthorizer(ts.repos.UserRepo)

	adaVoucher := &domain.Voucher{VoucherID: "v1", OrganizationID: ts.acme.OrganizationID, StaffID: ts.ada.UserID}

	testCases := []struct {
		name    string
		user    domain.User
		action  domain.Action
		voucher *domain.Voucher
		wantErr error
	}{
		{"staff creates", ts.ada, domain.ActionCreateVoucher, nil, nil},
		{"admin cannot create", ts.grace, domain.ActionCreateVoucher, nil, apperrors.ErrForbidden},
		{"accountant cannot create", ts.carol, domain.ActionCreateVoucher, nil, apperrors.ErrForbidden},
		{"owner views", ts.ada, domain.ActionViewVoucher, adaVoucher, nil},
		{"other staff cannot view", ts.bob, domain.ActionViewVoucher, adaVoucher, apperrors.ErrForbidden},
		{"accountant views", ts.carol, domain.ActionViewVoucher, adaVoucher, nil},
		{"admin views", ts.alan, domain.ActionViewVoucher, adaVoucher, nil},
		{"foreign admin sees nothing", ts.betaAdmin, domain.ActionViewVoucher, adaVoucher, apperrors.ErrNotFound},
		{"foreign staff sees nothing", ts.betaStaff, domain.ActionApproveVoucher, adaVoucher, apperrors.ErrNotFound},
		{"everyone lists", ts.bob, domain.ActionListVouchers, nil, nil},
		{"admin approves", ts.alan, domain.ActionApproveVoucher, adaVoucher, nil},
		{"accountant cannot approve", ts.carol, domain.ActionApproveVoucher, adaVoucher, apperrors.ErrForbidden},
		{"admin rejects", ts.grace, domain.ActionRejectVoucher, adaVoucher, nil},
		{"staff cannot reject", ts.ada, domain.ActionRejectVoucher, adaVoucher, apperrors.ErrForbidden},
		{"accountant pays", ts.carol, domain.ActionPayVoucher, adaVoucher, nil},
		{"admin cannot pay", ts.grace, domain.ActionPayVoucher, adaVoucher, apperrors.ErrForbidden},
		{"accountant lists users", ts.carol, domain.ActionListUsers, nil, nil},
		{"staff cannot list users", ts.bob, domain.ActionListUsers, nil, apperrors.ErrForbidden},
		{"main admin manages users", ts.grace, domain.ActionManageUsers, nil, nil},
		{"second admin cannot manage users", ts.alan, domain.ActionManageUsers, nil, apperrors.ErrForbidden},
		{"foreign main admin manages own org", ts.betaAdmin, domain.ActionManageUsers, nil, nil},
		{"any admin posts", ts.alan, domain.ActionPostNotification, nil, nil},
		{"accountant cannot post", ts.carol, domain.ActionPostNotification, nil, apperrors.ErrForbidden},
		{"main admin deletes org", ts.grace, domain.ActionDeleteOrganization, nil, nil},
		{"second admin cannot delete org", ts.alan, domain.ActionDeleteOrganization, nil, apperrors.ErrForbidden},
		{"unknown action", ts.grace, domain.Action("voucher:archive"), nil, apperrors.ErrForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := authorizer.ResolveIdentity(ctx, tc.user.UserID)
			require.NoError(t, err)

			err = authorizer.Authorize(ctx, identity, tc.action, tc.voucher)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAuthorizer_ResolveIdentityReadsCurrentState(t *testing.T) {
	ctx := context.Background()
	ts := seedTenants(t)
	authorizer := services.NewAuthorizer(ts.repos.UserRepo)

	identity, err := authorizer.ResolveIdentity(ctx, ts.ada.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "ada", Name: "Ada", Role: domain.RoleStaff, OrganizationID: "org-acme"}, identity)

	_, err = authorizer.ResolveIdentity(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, ts.repos.UserRepo.DeleteUser(ctx, ts.acme.OrganizationID, ts.ada.UserID))
	_, err = authorizer.ResolveIdentity(ctx, ts.ada.UserID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
