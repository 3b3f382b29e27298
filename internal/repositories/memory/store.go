// Package memory holds in-memory repositories for development and tests.
// They honour the same contracts as the pgsql package, including the
// conditional status update and organization cascade.
package memory

import (
	"sync"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
)

// Store is the shared state behind every in-memory repository.
// A single lock keeps cross-entity operations such as cascade deletes atomic.
type Store struct {
	mu            sync.RWMutex
	organizations map[string]domain.Organization
	users         map[string]domain.User
	vouchers      map[string]domain.Voucher
	notifications map[string]domain.Notification
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		organizations: make(map[string]domain.Organization),
		users:         make(map[string]domain.User),
		vouchers:      make(map[string]domain.Voucher),
		notifications: make(map[string]domain.Notification),
	}
}

// NewRepositoryProvider wires every in-memory repository onto one store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		OrganizationRepo: &OrganizationRepository{store: store},
		UserRepo:         &UserRepository{store: store},
		VoucherRepo:      &VoucherRepository{store: store},
		NotificationRepo: &NotificationRepository{store: store},
	}
}

func copyVoucher(v domain.Voucher) domain.Voucher {
	c := v
	if v.ApprovedBy != nil {
		s := *v.ApprovedBy
		c.ApprovedBy = &s
	}
	if v.PaidBy != nil {
		s := *v.PaidBy
		c.PaidBy = &s
	}
	return c
}

func copyNotification(n domain.Notification) domain.Notification {
	c := n
	if n.VoucherID != nil {
		s := *n.VoucherID
		c.VoucherID = &s
	}
	return c
}
