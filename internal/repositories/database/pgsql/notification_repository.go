package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxNotificationRepository struct {
	BaseRepository
}

func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepositoryFacade {
	return &PgxNotificationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)

var notificationCopyColumns = []string{
	"notification_id", "organization_id", "recipient_id", "voucher_id",
	"type", "message", "is_read", "created_at",
}

// SaveNotifications uses COPY so a fan-out batch lands in a single round trip, all or nothing.
func (r *PgxNotificationRepository) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	source := pgx.CopyFromSlice(len(notifications), func(i int) ([]any, error) {
		n := notifications[i]
		return []any{
			n.NotificationID,
			n.OrganizationID,
			n.RecipientID,
			n.VoucherID,
			string(n.Type),
			n.Message,
			n.Read,
			n.CreatedAt,
		}, nil
	})
	_, err := r.Pool.CopyFrom(ctx, pgx.Identifier{"notifications"}, notificationCopyColumns, source)
	if err != nil {
		return mapPostgresError(err, "failed to save notifications")
	}
	return nil
}

func (r *PgxNotificationRepository) ListNotificationsForRecipient(ctx context.Context, organizationID, userID string, limit int) ([]domain.Notification, error) {
	query := `
		SELECT notification_id, organization_id, recipient_id, voucher_id, type, message, is_read, created_at
		FROM notifications
		WHERE organization_id = $1 AND recipient_id = $2
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, userID, limit)
	if err != nil {
		return nil, mapPostgresError(err, "failed to query notifications")
	}
	notifications, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Notification])
	if err != nil {
		return nil, mapPostgresError(err, "failed to collect notification rows")
	}
	return notifications, nil
}

func (r *PgxNotificationRepository) MarkNotificationRead(ctx context.Context, organizationID, userID, notificationID string) (*domain.Notification, error) {
	rows, err := r.Pool.Query(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE notification_id = $1 AND organization_id = $2 AND recipient_id = $3
		RETURNING notification_id, organization_id, recipient_id, voucher_id, type, message, is_read, created_at;
	`, notificationID, organizationID, userID)
	if err != nil {
		return nil, mapPostgresError(err, "failed to mark notification "+notificationID+" read")
	}
	updated, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Notification])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPostgresError(err, "failed to collect notification "+notificationID)
	}
	return &updated, nil
}

func (r *PgxNotificationRepository) DeleteNotificationsVisibleTo(ctx context.Context, organizationID, userID string) (int64, error) {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM notifications WHERE recipient_id = $1 OR organization_id = $2;`,
		userID, organizationID)
	if err != nil {
		return 0, mapPostgresError(err, "failed to clear notifications")
	}
	return tag.RowsAffected(), nil
}
