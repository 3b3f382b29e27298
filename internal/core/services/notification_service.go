package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

const (
	defaultNotificationFeedSize = 50
	maxNotificationSaveTries    = 5
)

type notificationService struct {
	BaseService
	notificationRepo portsrepo.NotificationRepositoryFacade
	userRepo         portsrepo.UserReader
	feedSize         int
	retryTimeout     time.Duration
	newBackOff       func() backoff.BackOff
}

// NotificationServiceOption is a functional option for configuring the notification service
type NotificationServiceOption func(*notificationService)

// WithNotificationFeedSize caps how many notifications ListNotifications returns.
func WithNotificationFeedSize(size int) NotificationServiceOption {
	return func(s *notificationService) {
		if size > 0 {
			s.feedSize = size
		}
	}
}

// WithNotificationRetry bounds the total time spent retrying a failed fan-out write.
func WithNotificationRetry(timeout time.Duration) NotificationServiceOption {
	return func(s *notificationService) {
		s.retryTimeout = timeout
	}
}

// WithNotificationBackOff replaces the retry schedule.
func WithNotificationBackOff(newBackOff func() backoff.BackOff) NotificationServiceOption {
	return func(s *notificationService) {
		s.newBackOff = newBackOff
	}
}

// WithNotificationClock overrides the clock used for createdAt.
func WithNotificationClock(now func() time.Time) NotificationServiceOption {
	return func(s *notificationService) {
		s.Now = now
	}
}

// NewNotificationService creates the notification fan-out and inbox service.
func NewNotificationService(
	notificationRepo portsrepo.NotificationRepositoryFacade,
	userRepo portsrepo.UserReader,
	authorizer portssvc.AuthorizerSvc,
	options ...NotificationServiceOption,
) portssvc.NotificationSvcFacade {
	svc := &notificationService{
		BaseService:      BaseService{Authorizer: authorizer},
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		feedSize:         defaultNotificationFeedSize,
		retryTimeout:     3 * time.Second,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

func (s *notificationService) NotifyVoucherEvent(ctx context.Context, eventType domain.NotificationType, voucher domain.Voucher) error {
	recipients, err := s.voucherEventRecipients(ctx, eventType, voucher)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		s.LogDebug(ctx, "No recipients for voucher event", slog.String("voucher_id", voucher.VoucherID), slog.String("event", string(eventType)))
		return nil
	}

	voucherID := voucher.VoucherID
	records := s.newNotifications(voucher.OrganizationID, recipients, &voucherID, eventType, voucherEventMessage(eventType, voucher))
	if err := s.saveWithRetry(ctx, records); err != nil {
		return fmt.Errorf("failed to store %d notifications for voucher %s: %w", len(records), voucher.VoucherID, err)
	}

	s.LogDebug(ctx, "Voucher event fanned out",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("event", string(eventType)),
		slog.Int("recipients", len(records)))
	return nil
}

// voucherEventRecipients returns distinct user IDs in a stable order.
func (s *notificationService) voucherEventRecipients(ctx context.Context, eventType domain.NotificationType, voucher domain.Voucher) ([]string, error) {
	var includeOwner bool
	var roles []domain.Role

	switch eventType {
	case domain.NotificationVoucherCreated:
		roles = []domain.Role{domain.RoleAdmin, domain.RoleAccountant}
	case domain.NotificationVoucherApproved:
		includeOwner = true
		roles = []domain.Role{domain.RoleAccountant}
	case domain.NotificationVoucherRejected:
		includeOwner = true
	case domain.NotificationVoucherPaid:
		includeOwner = true
		roles = []domain.Role{domain.RoleAdmin}
	default:
		return nil, fmt.Errorf("%w: %s is not a voucher event", apperrors.ErrValidation, eventType)
	}

	seen := make(map[string]bool)
	recipients := make([]string, 0)
	add := func(userID string) {
		if !seen[userID] {
			seen[userID] = true
			recipients = append(recipients, userID)
		}
	}

	if includeOwner {
		// Staff IDs are not foreign keys, so the owner may be gone by now.
		owner, err := s.userRepo.FindUserByID(ctx, voucher.StaffID)
		switch {
		case err == nil && owner.OrganizationID == voucher.OrganizationID:
			add(owner.UserID)
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("failed to load voucher owner: %w", err)
		}
	}

	if len(roles) > 0 {
		users, err := s.userRepo.ListUsersByRoles(ctx, voucher.OrganizationID, roles...)
		if err != nil {
			return nil, fmt.Errorf("failed to load notification recipients: %w", err)
		}
		for _, u := range users {
			add(u.UserID)
		}
	}
	return recipients, nil
}

func voucherEventMessage(eventType domain.NotificationType, v domain.Voucher) string {
	switch eventType {
	case domain.NotificationVoucherCreated:
		return fmt.Sprintf("A new voucher %s for %s was created by %s", v.VoucherID, v.Amount.StringFixed(2), v.StaffName)
	case domain.NotificationVoucherApproved:
		return fmt.Sprintf("Voucher %s was approved by %s", v.VoucherID, derefOr(v.ApprovedBy, "an admin"))
	case domain.NotificationVoucherRejected:
		return fmt.Sprintf("Voucher %s was rejected", v.VoucherID)
	case domain.NotificationVoucherPaid:
		return fmt.Sprintf("Voucher %s was marked as paid by %s", v.VoucherID, derefOr(v.PaidBy, "an accountant"))
	}
	return fmt.Sprintf("Voucher %s was updated", v.VoucherID)
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func (s *notificationService) newNotifications(organizationID string, recipients []string, voucherID *string, eventType domain.NotificationType, message string) []domain.Notification {
	now := s.CurrentTime()
	records := make([]domain.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		records = append(records, domain.Notification{
			NotificationID: uuid.NewString(),
			OrganizationID: organizationID,
			RecipientID:    recipientID,
			VoucherID:      voucherID,
			Type:           eventType,
			Message:        message,
			CreatedAt:      now,
		})
	}
	return records
}

// saveWithRetry retries transient storage failures. Constraint violations will not heal and stop at once.
func (s *notificationService) saveWithRetry(ctx context.Context, records []domain.Notification) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.notificationRepo.SaveNotifications(ctx, records)
		if err != nil && isPermanentStoreError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(maxNotificationSaveTries),
		backoff.WithMaxElapsedTime(s.retryTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.GetLogger(ctx).Warn("Retrying notification write",
				slog.String("error", err.Error()),
				slog.Duration("next_attempt_in", next))
		}),
	)
	return err
}

func isPermanentStoreError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrDuplicate) ||
		errors.Is(err, apperrors.ErrNotFound)
}

func (s *notificationService) ListNotifications(ctx context.Context, requestingUserID string) ([]domain.Notification, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	feed, err := s.notificationRepo.ListNotificationsForRecipient(ctx, identity.OrganizationID, identity.UserID, s.feedSize)
	if err != nil {
		s.LogError(ctx, err, "Failed to list notifications", slog.String("user_id", identity.UserID))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return feed, nil
}

func (s *notificationService) MarkNotificationRead(ctx context.Context, requestingUserID, notificationID string) (*domain.Notification, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	updated, err := s.notificationRepo.MarkNotificationRead(ctx, identity.OrganizationID, identity.UserID, notificationID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to mark notification read", slog.String("notification_id", notificationID))
		}
		return nil, err
	}
	return updated, nil
}

func (s *notificationService) ClearNotifications(ctx context.Context, requestingUserID string) (int64, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return 0, err
	}
	// Clear-all is organization wide, not limited to the caller's own inbox.
	deleted, err := s.notificationRepo.DeleteNotificationsVisibleTo(ctx, identity.OrganizationID, identity.UserID)
	if err != nil {
		s.LogError(ctx, err, "Failed to clear notifications", slog.String("user_id", identity.UserID))
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	s.LogInfo(ctx, "Notifications cleared",
		slog.String("user_id", identity.UserID),
		slog.String("organization_id", identity.OrganizationID),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

func (s *notificationService) PostNotification(ctx context.Context, requestingUserID string, req dto.PostNotificationRequest) ([]domain.Notification, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionPostNotification)
	if err != nil {
		return nil, err
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := validateRequest(req).OrNil(); err != nil {
		return nil, err
	}

	var recipients []string
	if req.RecipientID != nil && *req.RecipientID != "" {
		recipient, err := s.userRepo.FindUserByID(ctx, *req.RecipientID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load recipient: %w", err)
		}
		if err != nil || recipient.OrganizationID != identity.OrganizationID {
			return nil, apperrors.NewNotFoundError("recipient not found")
		}
		recipients = []string{recipient.UserID}
	} else {
		members, err := s.userRepo.ListUsersByOrganization(ctx, identity.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load organization members: %w", err)
		}
		for _, m := range members {
			recipients = append(recipients, m.UserID)
		}
	}

	records := s.newNotifications(identity.OrganizationID, recipients, nil, domain.NotificationSystem, req.Message)
	if err := s.notificationRepo.SaveNotifications(ctx, records); err != nil {
		s.LogError(ctx, err, "Failed to post notification", slog.String("user_id", identity.UserID))
		return nil, fmt.Errorf("failed to post notification: %w", err)
	}

	s.LogInfo(ctx, "Notification posted", slog.String("user_id", identity.UserID), slog.Int("recipients", len(records)))
	return records, nil
}
