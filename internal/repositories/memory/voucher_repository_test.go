package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/SscSPs/voucher_approval_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedVouchers(t *testing.T) portsrepo.RepositoryProvider {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositoryProvider(memory.NewStore())

	for _, org := range []string{"org-a", "org-b"} {
		require.NoError(t, repos.OrganizationRepo.SaveOrganizationWithAdmin(ctx,
			domain.Organization{OrganizationID: org, Name: org},
			domain.User{UserID: org + "-admin", Email: org + "@example.com", Role: domain.RoleAdmin, OrganizationID: org}))
	}

	// Five vouchers in org-a on consecutive days, two of them sharing a timestamp.
	for i := 0; i < 5; i++ {
		date := day0.AddDate(0, 0, i)
		if i == 4 {
			date = day0.AddDate(0, 0, 3)
		}
		staff := "ada"
		if i%2 == 1 {
			staff = "bob"
		}
		require.NoError(t, repos.VoucherRepo.SaveVoucher(ctx, domain.Voucher{
			VoucherID:      fmt.Sprintf("A%d", i),
			OrganizationID: "org-a",
			Purpose:        fmt.Sprintf("Purchase %d", i),
			Amount:         decimal.NewFromInt(int64(10 * (i + 1))),
			Status:         domain.VoucherPending,
			Date:           date,
			StaffID:        staff,
			StaffName:      staff,
		}))
	}
	require.NoError(t, repos.VoucherRepo.SaveVoucher(ctx, domain.Voucher{
		VoucherID: "B0", OrganizationID: "org-b", Purpose: "Purchase 0", Amount: decimal.NewFromInt(1),
		Status: domain.VoucherPending, Date: day0, StaffID: "ada",
	}))
	return repos
}

func ids(vouchers []domain.Voucher) []string {
	out := make([]string, len(vouchers))
	for i, v := range vouchers {
		out[i] = v.VoucherID
	}
	return out
}

func TestVoucherRepository_ListOrderingAndCursor(t *testing.T) {
	ctx := context.Background()
	repo := seedVouchers(t).VoucherRepo

	all, err := repo.ListVouchers(ctx, domain.VoucherFilter{OrganizationID: "org-a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A4", "A3", "A2", "A1", "A0"}, ids(all))

	page, err := repo.ListVouchers(ctx, domain.VoucherFilter{
		OrganizationID: "org-a",
		Limit:          2,
		After:          &domain.VoucherCursor{Date: all[1].Date, VoucherID: all[1].VoucherID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A1"}, ids(page))
}

func TestVoucherRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := seedVouchers(t).VoucherRepo
	bob := "bob"
	from := day0.AddDate(0, 0, 1)
	to := day0.AddDate(0, 0, 3)

	testCases := []struct {
		name   string
		filter domain.VoucherFilter
		want   []string
	}{
		{"staff", domain.VoucherFilter{OrganizationID: "org-a", StaffID: &bob}, []string{"A3", "A1"}},
		{"date range is half open", domain.VoucherFilter{OrganizationID: "org-a", From: &from, To: &to}, []string{"A2", "A1"}},
		{"search is case insensitive", domain.VoucherFilter{OrganizationID: "org-a", Search: "PURCHASE 2"}, []string{"A2"}},
		{"search matches id", domain.VoucherFilter{OrganizationID: "org-a", Search: "a0"}, []string{"A0"}},
		{"tenant scoped", domain.VoucherFilter{OrganizationID: "org-b"}, []string{"B0"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ListVouchers(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestVoucherRepository_UpdateStatusIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := seedVouchers(t).VoucherRepo

	v, err := repo.FindVoucherByID(ctx, "org-a", "A0")
	require.NoError(t, err)
	transition, ok := domain.TransitionTo(domain.VoucherApproved)
	require.True(t, ok)
	next := transition.Apply(*v, "Grace", day0.AddDate(0, 0, 7))

	updated, err := repo.UpdateVoucherStatus(ctx, domain.VoucherPending, next)
	require.NoError(t, err)
	assert.Equal(t, domain.VoucherApproved, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, "Grace", *updated.ApprovedBy)

	_, err = repo.UpdateVoucherStatus(ctx, domain.VoucherPending, next)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Returned copies do not alias stored state.
	*updated.ApprovedBy = "Mallory"
	again, err := repo.FindVoucherByID(ctx, "org-a", "A0")
	require.NoError(t, err)
	assert.Equal(t, "Grace", *again.ApprovedBy)

	_, err = repo.FindVoucherByID(ctx, "org-b", "A0")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVoucherRepository_Summary(t *testing.T) {
	ctx := context.Background()
	repo := seedVouchers(t).VoucherRepo
	ada := "ada"

	summary, err := repo.SummarizeVouchers(ctx, "org-a", &ada)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 3, summary[0].Count)
	assert.True(t, decimal.NewFromInt(90).Equal(summary[0].Total))

	err = repo.SaveVoucher(ctx, domain.Voucher{VoucherID: "A0", OrganizationID: "org-a"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}
