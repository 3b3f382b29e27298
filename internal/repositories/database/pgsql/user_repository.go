package pgsql

import (
	"context"
	"strings"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const fullUserSelectQuery = `
SELECT
	u.user_id, u.name, u.email, u.password_hash, u.role, u.organization_id,
	u.created_at, u.last_updated_at
FROM users u
`

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertUser(ctx context.Context, db execer, user domain.User) error {
	query := `
		INSERT INTO users (
			user_id, organization_id, name, email, password_hash, role, created_at, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := db.Exec(ctx, query,
		user.UserID,
		user.OrganizationID,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.LastUpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err, "failed to save user "+user.UserID)
	}
	return nil
}

// getUsers runs the shared select with the given filter suffix.
func (r *PgxUserRepository) getUsers(ctx context.Context, filterQuery string, args ...any) ([]domain.User, error) {
	rows, err := r.Pool.Query(ctx, fullUserSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, mapPostgresError(err, "failed to query users")
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		return nil, mapPostgresError(err, "failed to collect user rows")
	}
	return users, nil
}

func (r *PgxUserRepository) getOneUser(ctx context.Context, filterQuery string, args ...any) (*domain.User, error) {
	users, err := r.getUsers(ctx, filterQuery, args...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getOneUser(ctx, `WHERE u.user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOneUser(ctx, `WHERE LOWER(u.email) = LOWER($1)`, email)
}

func (r *PgxUserRepository) ListUsersByOrganization(ctx context.Context, organizationID string) ([]domain.User, error) {
	return r.getUsers(ctx, `WHERE u.organization_id = $1 ORDER BY u.created_at, u.user_id`, organizationID)
}

func (r *PgxUserRepository) ListUsersByRoles(ctx context.Context, organizationID string, roles ...domain.Role) ([]domain.User, error) {
	if len(roles) == 0 {
		return []domain.User{}, nil
	}
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = string(role)
	}
	return r.getUsers(ctx,
		`WHERE u.organization_id = $1 AND u.role = ANY($2) ORDER BY u.created_at, u.user_id`,
		organizationID, roleNames)
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return insertUser(ctx, r.Pool, user)
}

func (r *PgxUserRepository) UpdateUserName(ctx context.Context, organizationID, userID, name string, now time.Time) error {
	query := `
		UPDATE users
		SET name = $1, last_updated_at = $2
		WHERE user_id = $3 AND organization_id = $4;
	`
	tag, err := r.Pool.Exec(ctx, query, name, now, userID, organizationID)
	if err != nil {
		return mapPostgresError(err, "failed to rename user "+userID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) DeleteUser(ctx context.Context, organizationID, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`DELETE FROM users WHERE user_id = $1 AND organization_id = $2;`,
		userID, organizationID)
	if err != nil {
		return mapPostgresError(err, "failed to delete user "+userID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
