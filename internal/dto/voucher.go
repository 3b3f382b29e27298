package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateVoucherRequest defines the data needed to submit a voucher.
// Fields are kept loose so that every offending field can be reported at once.
type CreateVoucherRequest struct {
	Purpose     string          `json:"purpose" validate:"required,max=200"`
	Amount      json.RawMessage `json:"amount" validate:"required" swaggertype:"string" example:"85000.00"` // JSON number or numeric string
	Description string          `json:"description" validate:"required,max=2000"`
	NeededBy    string          `json:"neededBy" validate:"required"`
	StaffName   string          `json:"staffName" validate:"max=200"` // Optional, defaults to the submitter's name
}

// ListVouchersParams defines query parameters for listing vouchers.
type ListVouchersParams struct {
	Status    string  `form:"status"`
	StaffID   string  `form:"staffId"`
	From      string  `form:"from"` // YYYY-MM-DD, inclusive
	To        string  `form:"to"`   // YYYY-MM-DD, inclusive
	Search    string  `form:"q"`
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID      string               `json:"voucherID"`
	OrganizationID string               `json:"organizationID"`
	Purpose        string               `json:"purpose"`
	Amount         decimal.Decimal      `json:"amount"`
	Description    string               `json:"description"`
	Status         domain.VoucherStatus `json:"status"`
	Date           time.Time            `json:"date"`
	NeededBy       string               `json:"neededBy"`
	StaffID        string               `json:"staffID"`
	StaffName      string               `json:"staffName"`
	ApprovedBy     *string              `json:"approvedBy,omitempty"`
	PaidBy         *string              `json:"paidBy,omitempty"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
}

// ListVouchersResponse wraps a page of vouchers.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// VoucherSummaryResponse lists count and total per status.
type VoucherSummaryResponse struct {
	Statuses []domain.VoucherStatusSummary `json:"statuses"`
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	return VoucherResponse{
		VoucherID:      v.VoucherID,
		OrganizationID: v.OrganizationID,
		Purpose:        v.Purpose,
		Amount:         v.Amount,
		Description:    v.Description,
		Status:         v.Status,
		Date:           v.Date,
		NeededBy:       v.NeededBy.Format(time.DateOnly),
		StaffID:        v.StaffID,
		StaffName:      v.StaffName,
		ApprovedBy:     v.ApprovedBy,
		PaidBy:         v.PaidBy,
		LastUpdatedAt:  v.LastUpdatedAt,
	}
}

// ToListVoucherResponse converts a slice of domain.Voucher to a slice of VoucherResponse DTOs
func ToListVoucherResponse(vouchers []domain.Voucher) []VoucherResponse {
	res := make([]VoucherResponse, len(vouchers))
	for i := range vouchers {
		res[i] = ToVoucherResponse(&vouchers[i])
	}
	return res
}
