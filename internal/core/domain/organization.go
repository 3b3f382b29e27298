package domain

// Organization is a tenant. Every user, voucher and notification belongs to exactly one.
type Organization struct {
	OrganizationID string `json:"organizationID" db:"organization_id"`
	Name           string `json:"name" db:"name"`
	AuditFields
}
