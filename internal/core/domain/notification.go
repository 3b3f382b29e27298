package domain

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationVoucherCreated  NotificationType = "voucher_created"
	NotificationVoucherApproved NotificationType = "voucher_approved"
	NotificationVoucherRejected NotificationType = "voucher_rejected"
	NotificationVoucherPaid     NotificationType = "voucher_paid"
	NotificationSystem          NotificationType = "system"
)

// Notification is a message addressed to exactly one user. Read state and clearing are per recipient.
type Notification struct {
	NotificationID string           `json:"notificationID" db:"notification_id"`
	OrganizationID string           `json:"organizationID" db:"organization_id"`
	RecipientID    string           `json:"recipientID" db:"recipient_id"`
	VoucherID      *string          `json:"voucherID,omitempty" db:"voucher_id"`
	Type           NotificationType `json:"type" db:"type"`
	Message        string           `json:"message" db:"message"`
	Read           bool             `json:"read" db:"is_read"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`
}

// VisibleTo reports whether the notification belongs in id's feed.
func (n Notification) VisibleTo(id Identity) bool {
	return n.OrganizationID == id.OrganizationID && n.RecipientID == id.UserID
}
