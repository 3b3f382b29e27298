package domain

// Identity is who a request acts as. It is derived from a stored user, never trusted from a token alone.
type Identity struct {
	UserID         string
	Name           string
	Role           Role
	OrganizationID string
}

func (i Identity) IsStaff() bool      { return i.Role == RoleStaff }
func (i Identity) IsAccountant() bool { return i.Role == RoleAccountant }
func (i Identity) IsAdmin() bool      { return i.Role == RoleAdmin }

// Action names something an identity may attempt.
type Action string

const (
	ActionCreateVoucher      Action = "voucher:create"
	ActionViewVoucher        Action = "voucher:view"
	ActionListVouchers       Action = "voucher:list"
	ActionApproveVoucher     Action = "voucher:approve"
	ActionRejectVoucher      Action = "voucher:reject"
	ActionPayVoucher         Action = "voucher:pay"
	ActionListUsers          Action = "user:list"
	ActionManageUsers        Action = "user:manage"
	ActionPostNotification   Action = "notification:post"
	ActionDeleteOrganization Action = "organization:delete"
)
