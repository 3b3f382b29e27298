package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the lifecycle state of a voucher.
type VoucherStatus string

const (
	VoucherPending  VoucherStatus = "pending"
	VoucherApproved VoucherStatus = "approved"
	VoucherRejected VoucherStatus = "rejected"
	VoucherPaid     VoucherStatus = "paid"
)

// IsValid reports whether s is a known status.
func (s VoucherStatus) IsValid() bool {
	switch s {
	case VoucherPending, VoucherApproved, VoucherRejected, VoucherPaid:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s VoucherStatus) IsTerminal() bool {
	return s == VoucherRejected || s == VoucherPaid
}

// Voucher is a staff member's request for money.
type Voucher struct {
	VoucherID      string          `json:"voucherID" db:"voucher_id"`
	OrganizationID string          `json:"organizationID" db:"organization_id"`
	Purpose        string          `json:"purpose" db:"purpose"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Description    string          `json:"description" db:"description"`
	Status         VoucherStatus   `json:"status" db:"status"`
	Date           time.Time       `json:"date" db:"voucher_date"`
	NeededBy       time.Time       `json:"neededBy" db:"needed_by"`
	StaffID        string          `json:"staffID" db:"staff_id"`
	StaffName      string          `json:"staffName" db:"staff_name"`
	ApprovedBy     *string         `json:"approvedBy,omitempty" db:"approved_by"`
	PaidBy         *string         `json:"paidBy,omitempty" db:"paid_by"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt" db:"last_updated_at"`
}

// VoucherTransition is one legal edge of the lifecycle.
type VoucherTransition struct {
	From  VoucherStatus
	To    VoucherStatus
	Actor Role
}

// Every target status has exactly one legal source. Creation (to pending) is handled separately.
var voucherTransitions = map[VoucherStatus]VoucherTransition{
	VoucherApproved: {From: VoucherPending, To: VoucherApproved, Actor: RoleAdmin},
	VoucherRejected: {From: VoucherPending, To: VoucherRejected, Actor: RoleAdmin},
	VoucherPaid:     {From: VoucherApproved, To: VoucherPaid, Actor: RoleAccountant},
}

// TransitionTo returns the lifecycle edge that ends in status to.
func TransitionTo(to VoucherStatus) (VoucherTransition, bool) {
	t, ok := voucherTransitions[to]
	return t, ok
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to VoucherStatus) bool {
	t, ok := voucherTransitions[to]
	return ok && t.From == from
}

// Apply returns a copy of v moved to t.To by actorName at now. The caller checks legality first.
func (t VoucherTransition) Apply(v Voucher, actorName string, now time.Time) Voucher {
	next := v
	next.Status = t.To
	next.LastUpdatedAt = now
	switch t.To {
	case VoucherApproved:
		name := actorName
		next.ApprovedBy = &name
	case VoucherPaid:
		name := actorName
		next.PaidBy = &name
	}
	return next
}

// VoucherCursor marks the last voucher of a page in date-descending order.
type VoucherCursor struct {
	Date      time.Time
	VoucherID string
}

// VoucherFilter selects vouchers inside one organization. StaffID is the scope for staff callers.
// From is inclusive, To is exclusive.
type VoucherFilter struct {
	OrganizationID string
	StaffID        *string
	Status         *VoucherStatus
	From           *time.Time
	To             *time.Time
	Search         string
	Limit          int
	After          *VoucherCursor
}

// VoucherStatusSummary aggregates vouchers of one status.
type VoucherStatusSummary struct {
	Status VoucherStatus   `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}
