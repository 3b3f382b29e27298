package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	"github.com/SscSPs/voucher_approval_app/internal/core/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock NotificationRepository ---
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) ListNotificationsForRecipient(ctx context.Context, organizationID, userID string, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, organizationID, userID, limit)
	var feed []domain.Notification
	if args.Get(0) != nil {
		feed = args.Get(0).([]domain.Notification)
	}
	return feed, args.Error(1)
}

func (m *MockNotificationRepository) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkNotificationRead(ctx context.Context, organizationID, userID, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, organizationID, userID, notificationID)
	var n *domain.Notification
	if args.Get(0) != nil {
		n = args.Get(0).(*domain.Notification)
	}
	return n, args.Error(1)
}

func (m *MockNotificationRepository) DeleteNotificationsVisibleTo(ctx context.Context, organizationID, userID string) (int64, error) {
	args := m.Called(ctx, organizationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func fastRetry() services.NotificationServiceOption {
	return services.WithNotificationBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	})
}

func acmeVoucher(ts *tenants, status domain.VoucherStatus) domain.Voucher {
	grace := ts.grace.Name
	return domain.Voucher{
		VoucherID:      "VCH-20260310-00000000AA",
		OrganizationID: ts.acme.OrganizationID,
		Purpose:        "Printer",
		Amount:         decimal.NewFromInt(85000),
		Status:         status,
		StaffID:        ts.ada.UserID,
		StaffName:      ts.ada.Name,
		ApprovedBy:     &grace,
	}
}

func recipientsOf(records []domain.Notification) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.RecipientID)
	}
	return ids
}

func TestNotifyVoucherEvent_Recipients(t *testing.T) {
	ts := seedTenants(t)

	testCases := []struct {
		name  string
		event domain.NotificationType
		want  []string
	}{
		{"created", domain.NotificationVoucherCreated, []string{ts.grace.UserID, ts.alan.UserID, ts.carol.UserID}},
		{"approved", domain.NotificationVoucherApproved, []string{ts.ada.UserID, ts.carol.UserID}},
		{"rejected", domain.NotificationVoucherRejected, []string{ts.ada.UserID}},
		{"paid", domain.NotificationVoucherPaid, []string{ts.ada.UserID, ts.grace.UserID, ts.alan.UserID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockNotificationRepository)
			var saved []domain.Notification
			repo.On("SaveNotifications", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { saved = args.Get(1).([]domain.Notification) }).
				Return(nil).Once()

			svc := services.NewNotificationService(repo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo))
			err := svc.NotifyVoucherEvent(context.Background(), tc.event, acmeVoucher(ts, domain.VoucherPending))
			require.NoError(t, err)

			assert.ElementsMatch(t, tc.want, recipientsOf(saved))
			for _, n := range saved {
				assert.Equal(t, tc.event, n.Type)
				assert.Equal(t, ts.acme.OrganizationID, n.OrganizationID)
				assert.False(t, n.Read)
				assert.NotEmpty(t, n.NotificationID)
				require.NotNil(t, n.VoucherID)
				assert.Equal(t, "VCH-20260310-00000000AA", *n.VoucherID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestNotifyVoucherEvent_SkipsDeletedOwner(t *testing.T) {
	ctx := context.Background()
	ts := seedTenants(t)
	require.NoError(t, ts.repos.UserRepo.DeleteUser(ctx, ts.acme.OrganizationID, ts.ada.UserID))

	svc := services.NewNotificationService(ts.repos.NotificationRepo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo))
	require.NoError(t, svc.NotifyVoucherEvent(ctx, domain.NotificationVoucherRejected, acmeVoucher(ts, domain.VoucherRejected)))
	require.NoError(t, svc.NotifyVoucherEvent(ctx, domain.NotificationVoucherApproved, acmeVoucher(ts, domain.VoucherApproved)))

	assert.Len(t, ts.inbox(t, ts.carol), 1)
}

func TestNotifyVoucherEvent_RetriesTransientFailures(t *testing.T) {
	ts := seedTenants(t)
	repo := new(MockNotificationRepository)
	repo.On("SaveNotifications", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Twice()
	repo.On("SaveNotifications", mock.Anything, mock.Anything).Return(nil).Once()

	svc := services.NewNotificationService(repo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo), fastRetry())
	err := svc.NotifyVoucherEvent(context.Background(), domain.NotificationVoucherCreated, acmeVoucher(ts, domain.VoucherPending))

	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "SaveNotifications", 3)
}

func TestNotifyVoucherEvent_StopsOnPermanentFailure(t *testing.T) {
	ts := seedTenants(t)
	repo := new(MockNotificationRepository)
	repo.On("SaveNotifications", mock.Anything, mock.Anything).Return(apperrors.NewConflictError("notification id already exists"))

	svc := services.NewNotificationService(repo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo), fastRetry())
	err := svc.NotifyVoucherEvent(context.Background(), domain.NotificationVoucherCreated, acmeVoucher(ts, domain.VoucherPending))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	repo.AssertNumberOfCalls(t, "SaveNotifications", 1)
}

func TestNotifyVoucherEvent_GivesUpAfterMaxTries(t *testing.T) {
	ts := seedTenants(t)
	repo := new(MockNotificationRepository)
	repo.On("SaveNotifications", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc := services.NewNotificationService(repo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo), fastRetry())
	err := svc.NotifyVoucherEvent(context.Background(), domain.NotificationVoucherPaid, acmeVoucher(ts, domain.VoucherPaid))

	require.Error(t, err)
	repo.AssertNumberOfCalls(t, "SaveNotifications", 5)
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	ts := seedTenants(t)
	now := fixtureEpoch
	svc := services.NewNotificationService(
		ts.repos.NotificationRepo,
		ts.repos.UserRepo,
		services.NewAuthorizer(ts.repos.UserRepo),
		services.WithNotificationFeedSize(2),
		services.WithNotificationClock(func() time.Time { return now }),
	)

	for _, event := range []domain.NotificationType{domain.NotificationVoucherCreated, domain.NotificationVoucherApproved, domain.NotificationVoucherPaid} {
		require.NoError(t, svc.NotifyVoucherEvent(ctx, event, acmeVoucher(ts, domain.VoucherPending)))
		now = now.Add(time.Minute)
	}

	// Carol got created and approved, the feed is capped at two and newest first.
	feed, err := svc.ListNotifications(ctx, ts.carol.UserID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, domain.NotificationVoucherApproved, feed[0].Type)
	assert.Equal(t, domain.NotificationVoucherCreated, feed[1].Type)

	adaFeed, err := svc.ListNotifications(ctx, ts.ada.UserID)
	require.NoError(t, err)
	require.Len(t, adaFeed, 2)

	t.Run("mark read is per recipient", func(t *testing.T) {
		_, err := svc.MarkNotificationRead(ctx, ts.carol.UserID, adaFeed[0].NotificationID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = svc.MarkNotificationRead(ctx, ts.betaAdmin.UserID, adaFeed[0].NotificationID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		read, err := svc.MarkNotificationRead(ctx, ts.ada.UserID, adaFeed[0].NotificationID)
		require.NoError(t, err)
		require.NotNil(t, read)
		assert.True(t, read.Read)
		assert.Equal(t, adaFeed[0].NotificationID, read.NotificationID)
		assert.Equal(t, adaFeed[0].Message, read.Message)

		after, err := svc.ListNotifications(ctx, ts.ada.UserID)
		require.NoError(t, err)
		assert.True(t, after[0].Read)
		assert.False(t, after[1].Read)
	})

	t.Run("clear all empties the whole organization", func(t *testing.T) {
		betaVoucher := domain.Voucher{
			VoucherID:      "VCH-20260310-00000000BB",
			OrganizationID: ts.beta.OrganizationID,
			Purpose:        "Chairs",
			Amount:         decimal.NewFromInt(300),
			Status:         domain.VoucherPending,
			StaffID:        ts.betaStaff.UserID,
			StaffName:      ts.betaStaff.Name,
		}
		require.NoError(t, svc.NotifyVoucherEvent(ctx, domain.NotificationVoucherCreated, betaVoucher))

		// Two notifications each for Ada, Carol, Grace and Alan.
		deleted, err := svc.ClearNotifications(ctx, ts.ada.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(8), deleted)

		for _, u := range []domain.User{ts.ada, ts.carol, ts.grace, ts.alan} {
			assert.Empty(t, ts.inbox(t, u), u.Name)
		}
		assert.Len(t, ts.inbox(t, ts.betaAdmin), 1)
		assert.Len(t, ts.inbox(t, ts.betaAccant), 1)

		deleted, err = svc.ClearNotifications(ctx, ts.ada.UserID)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestPostNotification(t *testing.T) {
	ctx := context.Background()
	ts := seedTenants(t)
	svc := services.NewNotificationService(ts.repos.NotificationRepo, ts.repos.UserRepo, services.NewAuthorizer(ts.repos.UserRepo))

	t.Run("broadcast reaches every member once", func(t *testing.T) {
		records, err := svc.PostNotification(ctx, ts.alan.UserID, dto.PostNotificationRequest{Message: " Office closed Friday "})
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{ts.grace.UserID, ts.alan.UserID, ts.ada.UserID, ts.bob.UserID, ts.carol.UserID},
			recipientsOf(records))

		feed := ts.inbox(t, ts.bob)
		require.Len(t, feed, 1)
		assert.Equal(t, domain.NotificationSystem, feed[0].Type)
		assert.Equal(t, "Office closed Friday", feed[0].Message)
		assert.Nil(t, feed[0].VoucherID)
		assert.Empty(t, ts.inbox(t, ts.betaStaff))
	})

	t.Run("direct message", func(t *testing.T) {
		records, err := svc.PostNotification(ctx, ts.grace.UserID, dto.PostNotificationRequest{Message: "Receipts please", RecipientID: &ts.carol.UserID})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, ts.carol.UserID, records[0].RecipientID)
	})

	t.Run("recipient in another organization", func(t *testing.T) {
		_, err := svc.PostNotification(ctx, ts.grace.UserID, dto.PostNotificationRequest{Message: "hi", RecipientID: &ts.betaStaff.UserID})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, ts.inbox(t, ts.betaStaff))
	})

	t.Run("non admins are refused", func(t *testing.T) {
		for _, u := range []domain.User{ts.ada, ts.carol} {
			_, err := svc.PostNotification(ctx, u.UserID, dto.PostNotificationRequest{Message: "hi"})
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		}
	})

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.PostNotification(ctx, ts.grace.UserID, dto.PostNotificationRequest{Message: "   "})
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"message"}, verr.FieldNames())
	})
}
