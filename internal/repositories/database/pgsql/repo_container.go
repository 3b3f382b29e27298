package pgsql

import (
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx-backed repository onto one pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		OrganizationRepo: newPgxOrganizationRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		VoucherRepo:      newPgxVoucherRepository(dbPool),
		NotificationRepo: newPgxNotificationRepository(dbPool),
	}
}
