package dto

import (
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
)

// PostNotificationRequest is an admin-authored message. Without RecipientID it goes to every member.
type PostNotificationRequest struct {
	Message     string  `json:"message" validate:"required,max=500"`
	RecipientID *string `json:"recipientID"`
}

// NotificationResponse defines the data returned for a notification.
type NotificationResponse struct {
	NotificationID string                  `json:"notificationID"`
	Type           domain.NotificationType `json:"type"`
	Message        string                  `json:"message"`
	VoucherID      *string                 `json:"voucherID,omitempty"`
	Read           bool                    `json:"read"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// ListNotificationsResponse wraps the caller's notification feed.
type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
}

// ClearNotificationsResponse reports how many notifications were removed.
type ClearNotificationsResponse struct {
	Deleted int64 `json:"deleted"`
}

// PostNotificationResponse reports how many recipients received the message.
type PostNotificationResponse struct {
	Recipients int `json:"recipients"`
}

// ToNotificationResponse converts a domain.Notification to NotificationResponse DTO
func ToNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID: n.NotificationID,
		Type:           n.Type,
		Message:        n.Message,
		VoucherID:      n.VoucherID,
		Read:           n.Read,
		CreatedAt:      n.CreatedAt,
	}
}

// ToListNotificationsResponse converts notifications and counts the unread ones.
func ToListNotificationsResponse(notifications []domain.Notification) ListNotificationsResponse {
	res := ListNotificationsResponse{Notifications: make([]NotificationResponse, len(notifications))}
	for i := range notifications {
		res.Notifications[i] = ToNotificationResponse(&notifications[i])
		if !notifications[i].Read {
			res.UnreadCount++
		}
	}
	return res
}
