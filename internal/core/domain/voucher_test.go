package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	statuses := []domain.VoucherStatus{
		domain.VoucherPending,
		domain.VoucherApproved,
		domain.VoucherRejected,
		domain.VoucherPaid,
	}
	legal := map[[2]domain.VoucherStatus]bool{
		{domain.VoucherPending, domain.VoucherApproved}: true,
		{domain.VoucherPending, domain.VoucherRejected}: true,
		{domain.VoucherApproved, domain.VoucherPaid}:    true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := legal[[2]domain.VoucherStatus{from, to}]
			assert.Equal(t, want, domain.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionTo_Actors(t *testing.T) {
	tests := []struct {
		to    domain.VoucherStatus
		from  domain.VoucherStatus
		actor domain.Role
	}{
		{domain.VoucherApproved, domain.VoucherPending, domain.RoleAdmin},
		{domain.VoucherRejected, domain.VoucherPending, domain.RoleAdmin},
		{domain.VoucherPaid, domain.VoucherApproved, domain.RoleAccountant},
	}
	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			tr, ok := domain.TransitionTo(tt.to)
			require.True(t, ok)
			assert.Equal(t, tt.from, tr.From)
			assert.Equal(t, tt.actor, tr.Actor)
		})
	}

	_, ok := domain.TransitionTo(domain.VoucherPending)
	assert.False(t, ok, "pending is only reachable through creation")
}

func TestTransitionApply_PreservesApprover(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	v := domain.Voucher{
		VoucherID: "VCH-20240310-ABCDEF0123",
		Amount:    decimal.NewFromInt(120),
		Status:    domain.VoucherPending,
	}

	approve, _ := domain.TransitionTo(domain.VoucherApproved)
	approved := approve.Apply(v, "Grace", now)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "Grace", *approved.ApprovedBy)
	assert.Equal(t, domain.VoucherPending, v.Status, "Apply must not mutate its input")

	pay, _ := domain.TransitionTo(domain.VoucherPaid)
	paid := pay.Apply(approved, "Linus", now.Add(time.Hour))
	assert.Equal(t, domain.VoucherPaid, paid.Status)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, "Linus", *paid.PaidBy)
	assert.Equal(t, "Grace", *paid.ApprovedBy)
	assert.Equal(t, now.Add(time.Hour), paid.LastUpdatedAt)
}

func TestMainAdmin(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := []domain.User{
		{UserID: "u-3", Role: domain.RoleAdmin, CreatedAt: base.Add(2 * time.Hour)},
		{UserID: "u-1", Role: domain.RoleStaff, CreatedAt: base},
		{UserID: "u-b", Role: domain.RoleAdmin, CreatedAt: base.Add(time.Hour)},
		{UserID: "u-a", Role: domain.RoleAdmin, CreatedAt: base.Add(time.Hour)},
	}

	main, ok := domain.MainAdmin(users)
	require.True(t, ok)
	assert.Equal(t, "u-a", main.UserID)

	_, ok = domain.MainAdmin(users[1:2])
	assert.False(t, ok)
}

func TestNotificationVisibleTo(t *testing.T) {
	ada := domain.Identity{UserID: "ada", OrganizationID: "acme", Role: domain.RoleStaff}

	assert.True(t, domain.Notification{OrganizationID: "acme", RecipientID: "ada"}.VisibleTo(ada))
	assert.False(t, domain.Notification{OrganizationID: "acme", RecipientID: "bob"}.VisibleTo(ada))
	assert.False(t, domain.Notification{OrganizationID: "beta", RecipientID: "ada"}.VisibleTo(ada))
}
