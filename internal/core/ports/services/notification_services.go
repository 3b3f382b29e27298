package services

import (
	"context"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
)

// NotificationDispatcher fans voucher lifecycle events out to the affected users.
type NotificationDispatcher interface {
	// NotifyVoucherEvent records one notification per distinct recipient of the event.
	// Failures are logged and returned, callers must not roll back the transition because of them.
	NotifyVoucherEvent(ctx context.Context, eventType domain.NotificationType, voucher domain.Voucher) error
}

// NotificationInboxSvc defines the per-user notification feed
type NotificationInboxSvc interface {
	// ListNotifications returns the caller's most recent notifications.
	ListNotifications(ctx context.Context, requestingUserID string) ([]domain.Notification, error)

	// MarkNotificationRead flags one of the caller's notifications as read and returns it.
	MarkNotificationRead(ctx context.Context, requestingUserID, notificationID string) (*domain.Notification, error)

	// ClearNotifications deletes the caller's notifications together with the rest of the organization's.
	ClearNotifications(ctx context.Context, requestingUserID string) (int64, error)

	// PostNotification lets an admin message one member or the whole organization.
	PostNotification(ctx context.Context, requestingUserID string, req dto.PostNotificationRequest) ([]domain.Notification, error)
}

// NotificationSvcFacade combines all notification-related service interfaces
type NotificationSvcFacade interface {
	NotificationDispatcher
	NotificationInboxSvc
}
