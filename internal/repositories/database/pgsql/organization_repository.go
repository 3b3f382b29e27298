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

type PgxOrganizationRepository struct {
	BaseRepository
}

func newPgxOrganizationRepository(pool *pgxpool.Pool) portsrepo.OrganizationRepositoryFacade {
	return &PgxOrganizationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OrganizationRepositoryFacade = (*PgxOrganizationRepository)(nil)

func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	query := `
		SELECT organization_id, name, created_at, created_by, last_updated_at
		FROM organizations
		WHERE organization_id = $1;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, mapPostgresError(err, "failed to query organization")
	}
	org, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Organization])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPostgresError(err, "failed to collect organization row")
	}
	return &org, nil
}

func (r *PgxOrganizationRepository) SaveOrganizationWithAdmin(ctx context.Context, org domain.Organization, admin domain.User) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO organizations (organization_id, name, created_at, created_by, last_updated_at)
			VALUES ($1, $2, $3, $4, $5);
		`, org.OrganizationID, org.Name, org.CreatedAt, org.CreatedBy, org.LastUpdatedAt)
		if err != nil {
			return mapPostgresError(err, "failed to save organization "+org.OrganizationID)
		}

		if err := insertUser(ctx, tx, admin); err != nil {
			return err
		}
		return nil
	})
}

// DeleteOrganization relies on ON DELETE CASCADE for users, vouchers and notifications.
func (r *PgxOrganizationRepository) DeleteOrganization(ctx context.Context, organizationID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM organizations WHERE organization_id = $1;`, organizationID)
	if err != nil {
		return mapPostgresError(err, "failed to delete organization "+organizationID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
