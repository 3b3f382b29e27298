package services

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
)

// VoucherReaderSvc defines read operations for vouchers
type VoucherReaderSvc interface {
	// GetVoucher returns one voucher visible to the requesting user.
	GetVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns a page of vouchers visible to the requesting user.
	ListVouchers(ctx context.Context, requestingUserID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)

	// SummarizeVouchers returns count and total per status over the vouchers the user can see.
	SummarizeVouchers(ctx context.Context, requestingUserID string) ([]domain.VoucherStatusSummary, error)
}

// VoucherLifecycleSvc defines the status-changing operations
type VoucherLifecycleSvc interface {
	// CreateVoucher submits a new pending voucher on behalf of a staff member.
	CreateVoucher(ctx context.Context, requestingUserID string, req dto.CreateVoucherRequest) (*domain.Voucher, error)

	// ApproveVoucher moves a pending voucher to approved. Admins only.
	ApproveVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error)

	// RejectVoucher moves a pending voucher to rejected. Admins only.
	RejectVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error)

	// PayVoucher moves an approved voucher to paid. Accountants only.
	PayVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error)
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherLifecycleSvc
}
