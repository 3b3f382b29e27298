package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/voucher_approval_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type VoucherRepository struct {
	store *Store
}

var _ portsrepo.VoucherRepositoryFacade = (*VoucherRepository)(nil)

func (r *VoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.vouchers[voucher.VoucherID]; ok {
		return apperrors.NewConflictError("voucher id already exists")
	}
	if _, ok := r.store.organizations[voucher.OrganizationID]; !ok {
		return apperrors.NewNotFoundError("organization does not exist")
	}
	r.store.vouchers[voucher.VoucherID] = copyVoucher(voucher)
	return nil
}

func (r *VoucherRepository) FindVoucherByID(ctx context.Context, organizationID, voucherID string) (*domain.Voucher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	v, ok := r.store.vouchers[voucherID]
	if !ok || v.OrganizationID != organizationID {
		return nil, apperrors.ErrNotFound
	}
	c := copyVoucher(v)
	return &c, nil
}

func (r *VoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	vouchers := make([]domain.Voucher, 0)
	for _, v := range r.store.vouchers {
		if matchesFilter(v, filter, search) {
			vouchers = append(vouchers, copyVoucher(v))
		}
	}

	sort.Slice(vouchers, func(i, j int) bool {
		return sortsBefore(vouchers[i].Date, vouchers[i].VoucherID, vouchers[j].Date, vouchers[j].VoucherID)
	})
	if filter.Limit > 0 && len(vouchers) > filter.Limit {
		vouchers = vouchers[:filter.Limit]
	}
	return vouchers, nil
}

// sortsBefore orders by date descending, then ID descending.
func sortsBefore(dateA time.Time, idA string, dateB time.Time, idB string) bool {
	if dateA.Equal(dateB) {
		return idA > idB
	}
	return dateA.After(dateB)
}

func matchesFilter(v domain.Voucher, f domain.VoucherFilter, search string) bool {
	if v.OrganizationID != f.OrganizationID {
		return false
	}
	if f.StaffID != nil && v.StaffID != *f.StaffID {
		return false
	}
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.From != nil && v.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && !v.Date.Before(*f.To) {
		return false
	}
	if f.After != nil && !sortsBefore(f.After.Date, f.After.VoucherID, v.Date, v.VoucherID) {
		return false
	}
	if search != "" {
		haystack := strings.ToLower(strings.Join([]string{v.Purpose, v.Description, v.StaffName, v.VoucherID}, "\x00"))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}

func (r *VoucherRepository) SummarizeVouchers(ctx context.Context, organizationID string, staffID *string) ([]domain.VoucherStatusSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byStatus := make(map[domain.VoucherStatus]*domain.VoucherStatusSummary)
	for _, v := range r.store.vouchers {
		if v.OrganizationID != organizationID || (staffID != nil && v.StaffID != *staffID) {
			continue
		}
		s, ok := byStatus[v.Status]
		if !ok {
			s = &domain.VoucherStatusSummary{Status: v.Status, Total: decimal.Zero}
			byStatus[v.Status] = s
		}
		s.Count++
		s.Total = s.Total.Add(v.Amount)
	}

	summaries := make([]domain.VoucherStatusSummary, 0, len(byStatus))
	for _, s := range byStatus {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Status < summaries[j].Status })
	return summaries, nil
}

// UpdateVoucherStatus performs the compare-and-set under the write lock.
func (r *VoucherRepository) UpdateVoucherStatus(ctx context.Context, from domain.VoucherStatus, next domain.Voucher) (*domain.Voucher, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.vouchers[next.VoucherID]
	if !ok || current.OrganizationID != next.OrganizationID || current.Status != from {
		return nil, apperrors.NewConcurrentModificationError("voucher", next.VoucherID)
	}

	current.Status = next.Status
	current.ApprovedBy = next.ApprovedBy
	current.PaidBy = next.PaidBy
	current.LastUpdatedAt = next.LastUpdatedAt
	r.store.vouchers[next.VoucherID] = copyVoucher(current)

	updated := copyVoucher(current)
	return &updated, nil
}
