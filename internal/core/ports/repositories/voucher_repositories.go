package repositories

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// VoucherReader defines read operations for voucher data. Every lookup is scoped to one organization.
type VoucherReader interface {
	// FindVoucherByID returns apperrors.ErrNotFound when the voucher does not exist in the organization.
	FindVoucherByID(ctx context.Context, organizationID, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns up to filter.Limit vouchers ordered by date, then ID, newest first.
	ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error)

	// SummarizeVouchers aggregates count and total amount per status. A non-nil staffID narrows the scope.
	SummarizeVouchers(ctx context.Context, organizationID string, staffID *string) ([]domain.VoucherStatusSummary, error)
}

// VoucherWriter defines write operations for voucher data
type VoucherWriter interface {
	// SaveVoucher persists a new voucher. An ID collision returns apperrors.ErrDuplicate.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucherStatus stores next only if the voucher is still in status from.
	// Otherwise it returns apperrors.ErrConflict and stores nothing.
	UpdateVoucherStatus(ctx context.Context, from domain.VoucherStatus, next domain.Voucher) (*domain.Voucher, error)
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
