package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

const voucherColumns = `
	v.voucher_id, v.organization_id, v.purpose, v.amount, v.description, v.status,
	v.voucher_date, v.needed_by, v.staff_id, v.staff_name, v.approved_by, v.paid_by,
	v.last_updated_at
`

func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	query := `
		INSERT INTO vouchers (
			voucher_id, organization_id, purpose, amount, description, status,
			voucher_date, needed_by, staff_id, staff_name, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		voucher.VoucherID,
		voucher.OrganizationID,
		voucher.Purpose,
		voucher.Amount,
		voucher.Description,
		voucher.Status,
		voucher.Date,
		voucher.NeededBy,
		voucher.StaffID,
		voucher.StaffName,
		voucher.LastUpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err, "failed to save voucher "+voucher.VoucherID)
	}
	return nil
}

func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, organizationID, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers v WHERE v.voucher_id = $1 AND v.organization_id = $2;`
	rows, err := r.Pool.Query(ctx, query, voucherID, organizationID)
	if err != nil {
		return nil, mapPostgresError(err, "failed to query voucher "+voucherID)
	}
	voucher, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Voucher])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPostgresError(err, "failed to collect voucher row")
	}
	return &voucher, nil
}

// ListVouchers builds the WHERE clause from the filter. The organization predicate is always present.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error) {
	conditions := []string{"v.organization_id = $1"}
	args := []any{filter.OrganizationID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StaffID != nil {
		conditions = append(conditions, "v.staff_id = "+next(*filter.StaffID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "v.status = "+next(string(*filter.Status)))
	}
	if filter.From != nil {
		conditions = append(conditions, "v.voucher_date >= "+next(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "v.voucher_date < "+next(*filter.To))
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(v.purpose ILIKE %[1]s OR v.description ILIKE %[1]s OR v.staff_name ILIKE %[1]s OR v.voucher_id ILIKE %[1]s)", p))
	}
	if filter.After != nil {
		d := next(filter.After.Date)
		id := next(filter.After.VoucherID)
		conditions = append(conditions, fmt.Sprintf("(v.voucher_date, v.voucher_id) < (%s, %s)", d, id))
	}

	query := `SELECT ` + voucherColumns + ` FROM vouchers v WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY v.voucher_date DESC, v.voucher_id DESC`
	if filter.Limit > 0 {
		query += " LIMIT " + next(filter.Limit)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err, "failed to list vouchers")
	}
	vouchers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Voucher])
	if err != nil {
		return nil, mapPostgresError(err, "failed to collect voucher rows")
	}
	return vouchers, nil
}

func (r *PgxVoucherRepository) SummarizeVouchers(ctx context.Context, organizationID string, staffID *string) ([]domain.VoucherStatusSummary, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(amount), 0)
		FROM vouchers
		WHERE organization_id = $1 AND ($2::text IS NULL OR staff_id = $2)
		GROUP BY status
		ORDER BY status;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, staffID)
	if err != nil {
		return nil, mapPostgresError(err, "failed to summarize vouchers")
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.VoucherStatusSummary, error) {
		var s domain.VoucherStatusSummary
		err := row.Scan(&s.Status, &s.Count, &s.Total)
		return s, err
	})
	if err != nil {
		return nil, mapPostgresError(err, "failed to collect voucher summary rows")
	}
	return summaries, nil
}

// UpdateVoucherStatus is a compare-and-set on status. Losing a race leaves zero rows to return.
func (r *PgxVoucherRepository) UpdateVoucherStatus(ctx context.Context, from domain.VoucherStatus, next domain.Voucher) (*domain.Voucher, error) {
	query := `
		UPDATE vouchers v
		SET status = $1, approved_by = $2, paid_by = $3, last_updated_at = $4
		WHERE v.voucher_id = $5 AND v.organization_id = $6 AND v.status = $7
		RETURNING ` + voucherColumns + `;`
	rows, err := r.Pool.Query(ctx, query,
		next.Status,
		next.ApprovedBy,
		next.PaidBy,
		next.LastUpdatedAt,
		next.VoucherID,
		next.OrganizationID,
		from,
	)
	if err != nil {
		return nil, mapPostgresError(err, "failed to update voucher "+next.VoucherID)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Voucher])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConcurrentModificationError("voucher", next.VoucherID)
		}
		return nil, mapPostgresError(err, "failed to collect updated voucher")
	}
	return &updated, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
