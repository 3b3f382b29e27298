package pgsql

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// duplicateMessages names the user-facing cause of each unique index.
var duplicateMessages = map[string]string{
	"uq_organizations_name": "organization name already taken",
	"uq_users_email":        "email already registered",
	"vouchers_pkey":         "voucher id already exists",
}

// mapPostgresError translates driver errors into apperrors values.
// Unknown failures become a 500 AppError carrying msg.
func mapPostgresError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.NewAppError(http.StatusInternalServerError, msg, err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if friendly, ok := duplicateMessages[pgErr.ConstraintName]; ok {
			return apperrors.NewConflictError(friendly)
		}
		return apperrors.NewConflictError(fmt.Sprintf("unique constraint %s violated", pgErr.ConstraintName))

	case pgerrcode.ForeignKeyViolation:
		return apperrors.NewNotFoundError(fmt.Sprintf("referenced row missing (%s)", pgErr.ConstraintName))

	case pgerrcode.CheckViolation:
		return apperrors.NewValidationFailedError(pgErr.ConstraintName, "check constraint violated")

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return apperrors.NewConcurrentModificationError("row", pgErr.TableName)

	case pgerrcode.QueryCanceled:
		return apperrors.NewAppError(http.StatusServiceUnavailable, msg+": query canceled", err)

	case pgerrcode.TooManyConnections, pgerrcode.CannotConnectNow, pgerrcode.AdminShutdown:
		return apperrors.NewAppError(http.StatusServiceUnavailable, msg+": database unavailable", err)

	default:
		return apperrors.NewAppError(http.StatusInternalServerError,
			fmt.Sprintf("%s: postgres error [%s]", msg, pgErr.Code), err)
	}
}
