package services

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/SscSPs/voucher_approval_app/internal/utils"
	"github.com/SscSPs/voucher_approval_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultVoucherPageSize = 20
	maxVoucherPageSize     = 100
	maxVoucherIDAttempts   = 3
)

// voucherService drives the voucher state machine and its read surface.
type voucherService struct {
	BaseService
	voucherRepo portsrepo.VoucherRepositoryFacade
	notifier    portssvc.NotificationDispatcher
	newID       func(time.Time) (string, error)
}

// VoucherServiceOption is a functional option for configuring the voucher service
type VoucherServiceOption func(*voucherService)

// WithVoucherNotifier sets the dispatcher that receives committed transitions.
func WithVoucherNotifier(notifier portssvc.NotificationDispatcher) VoucherServiceOption {
	return func(s *voucherService) {
		s.notifier = notifier
	}
}

// WithVoucherClock overrides the clock used for dates and audit timestamps.
func WithVoucherClock(now func() time.Time) VoucherServiceOption {
	return func(s *voucherService) {
		s.Now = now
	}
}

// WithVoucherIDGenerator overrides how voucher codes are generated.
func WithVoucherIDGenerator(fn func(time.Time) (string, error)) VoucherServiceOption {
	return func(s *voucherService) {
		s.newID = fn
	}
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(repo portsrepo.VoucherRepositoryFacade, authorizer portssvc.AuthorizerSvc, options ...VoucherServiceOption) portssvc.VoucherSvcFacade {
	svc := &voucherService{
		BaseService: BaseService{Authorizer: authorizer},
		voucherRepo: repo,
		newID:       utils.NewVoucherCode,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

func (s *voucherService) CreateVoucher(ctx context.Context, requestingUserID string, req dto.CreateVoucherRequest) (*domain.Voucher, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionCreateVoucher)
	if err != nil {
		return nil, err
	}

	now := s.CurrentTime()
	req.Purpose = strings.TrimSpace(req.Purpose)
	req.Description = strings.TrimSpace(req.Description)
	req.NeededBy = strings.TrimSpace(req.NeededBy)
	req.StaffName = strings.TrimSpace(req.StaffName)
	if req.StaffName == "" {
		req.StaffName = identity.Name
	}

	amount, neededBy, err := parseVoucherRequest(req, now)
	if err != nil {
		return nil, err
	}

	voucher := domain.Voucher{
		OrganizationID: identity.OrganizationID,
		Purpose:        req.Purpose,
		Amount:         amount,
		Description:    req.Description,
		Status:         domain.VoucherPending,
		Date:           now,
		NeededBy:       neededBy,
		StaffID:        identity.UserID,
		StaffName:      req.StaffName,
		LastUpdatedAt:  now,
	}

	for attempt := 1; ; attempt++ {
		voucher.VoucherID, err = s.newID(now)
		if err != nil {
			s.LogError(ctx, err, "Failed to generate voucher code")
			return nil, fmt.Errorf("failed to generate voucher code: %w", err)
		}
		err = s.voucherRepo.SaveVoucher(ctx, voucher)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrDuplicate) || attempt == maxVoucherIDAttempts {
			s.LogError(ctx, err, "Failed to save voucher", slog.String("voucher_id", voucher.VoucherID))
			return nil, fmt.Errorf("failed to create voucher: %w", err)
		}
		s.LogDebug(ctx, "Voucher code collision, regenerating", slog.String("voucher_id", voucher.VoucherID))
	}

	s.LogInfo(ctx, "Voucher created",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("staff_id", voucher.StaffID),
		slog.String("amount", voucher.Amount.String()))

	s.dispatch(ctx, domain.NotificationVoucherCreated, voucher)
	return &voucher, nil
}

// parseVoucherRequest runs tag validation and the parse checks, reporting every failing field together.
func parseVoucherRequest(req dto.CreateVoucherRequest, now time.Time) (decimal.Decimal, time.Time, error) {
	verr := validateRequest(req)

	var amount decimal.Decimal
	if !hasField(verr, "amount") {
		parsed, err := parseAmount(req.Amount)
		switch {
		case errors.Is(err, errAmountMissing):
			verr.Add("amount", "is required")
		case err != nil:
			verr.Add("amount", "must be a number")
		case !parsed.IsPositive():
			verr.Add("amount", "must be greater than zero")
		default:
			amount = parsed
		}
	}

	var neededBy time.Time
	if !hasField(verr, "neededBy") {
		parsed, err := parseDate(req.NeededBy)
		switch {
		case err != nil:
			verr.Add("neededBy", "must be a date in YYYY-MM-DD format")
		case parsed.Before(domain.DateOnly(now)):
			verr.Add("neededBy", "must not be in the past")
		default:
			neededBy = parsed
		}
	}

	return amount, neededBy, verr.OrNil()
}

var errAmountMissing = errors.New("amount missing")

// parseAmount accepts a JSON number or a string holding one.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, errAmountMissing
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, err
	}
	return amount, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar day in UTC.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DateOnly(t), nil
}

func (s *voucherService) ApproveVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error) {
	return s.transition(ctx, requestingUserID, voucherID, domain.ActionApproveVoucher, domain.VoucherApproved, domain.NotificationVoucherApproved)
}

func (s *voucherService) RejectVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error) {
	return s.transition(ctx, requestingUserID, voucherID, domain.ActionRejectVoucher, domain.VoucherRejected, domain.NotificationVoucherRejected)
}

func (s *voucherService) PayVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error) {
	return s.transition(ctx, requestingUserID, voucherID, domain.ActionPayVoucher, domain.VoucherPaid, domain.NotificationVoucherPaid)
}

// transition authorizes before touching state and commits through a status-guarded write.
// Notifications go out only after the write succeeded.
func (s *voucherService) transition(ctx context.Context, requestingUserID, voucherID string, action domain.Action, to domain.VoucherStatus, event domain.NotificationType) (*domain.Voucher, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}

	current, err := s.voucherRepo.FindVoucherByID(ctx, identity.OrganizationID, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	if err := s.Authorizer.Authorize(ctx, identity, action, current); err != nil {
		return nil, err
	}

	t, ok := domain.TransitionTo(to)
	if !ok || !domain.CanTransition(current.Status, to) {
		return nil, apperrors.NewInvalidTransitionError(string(current.Status), string(to))
	}

	next := t.Apply(*current, identity.Name, s.CurrentTime())
	updated, err := s.voucherRepo.UpdateVoucherStatus(ctx, current.Status, next)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogInfo(ctx, "Voucher transition lost a race", slog.String("voucher_id", voucherID), slog.String("to", string(to)))
		} else {
			s.LogError(ctx, err, "Failed to update voucher status", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Voucher status changed",
		slog.String("voucher_id", voucherID),
		slog.String("from", string(current.Status)),
		slog.String("to", string(updated.Status)),
		slog.String("actor_id", identity.UserID))

	s.dispatch(ctx, event, *updated)
	return updated, nil
}

// dispatch hands a committed change to the notifier. Failures never reach the caller.
// Fan-out outlives the request context and is bounded by the notifier's retry timeout.
func (s *voucherService) dispatch(ctx context.Context, event domain.NotificationType, voucher domain.Voucher) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyVoucherEvent(context.WithoutCancel(ctx), event, voucher); err != nil {
		s.LogError(ctx, err, "Notification fan-out failed",
			slog.String("voucher_id", voucher.VoucherID),
			slog.String("event", string(event)))
	}
}

func (s *voucherService) GetVoucher(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, identity.OrganizationID, voucherID)
	if err != nil {
		return nil, err
	}
	if err := s.Authorizer.Authorize(ctx, identity, domain.ActionViewVoucher, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *voucherService) ListVouchers(ctx context.Context, requestingUserID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionListVouchers)
	if err != nil {
		return nil, err
	}

	filter, err := buildVoucherFilter(identity, params)
	if err != nil {
		return nil, err
	}
	pageSize := filter.Limit
	filter.Limit = pageSize + 1

	vouchers, err := s.voucherRepo.ListVouchers(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers", slog.String("organization_id", identity.OrganizationID))
		return nil, fmt.Errorf("failed to list vouchers: %w", err)
	}

	res := &dto.ListVouchersResponse{}
	if len(vouchers) > pageSize {
		vouchers = vouchers[:pageSize]
		last := vouchers[pageSize-1]
		token := pagination.EncodeToken(last.Date, last.VoucherID)
		res.NextToken = &token
	}
	res.Vouchers = dto.ToListVoucherResponse(vouchers)
	return res, nil
}

// buildVoucherFilter applies role scoping before any client-supplied filter.
func buildVoucherFilter(identity domain.Identity, params dto.ListVouchersParams) (domain.VoucherFilter, error) {
	filter := domain.VoucherFilter{
		OrganizationID: identity.OrganizationID,
		Search:         strings.TrimSpace(params.Search),
		Limit:          params.Limit,
	}

	staffID := strings.TrimSpace(params.StaffID)
	if identity.IsStaff() {
		if staffID != "" && staffID != identity.UserID {
			return filter, apperrors.NewAuthorizationError(string(identity.Role), "list vouchers of other staff")
		}
		staffID = identity.UserID
	}
	if staffID != "" {
		filter.StaffID = &staffID
	}

	verr := &apperrors.ValidationError{}
	if params.Status != "" {
		status := domain.VoucherStatus(strings.ToLower(params.Status))
		if !status.IsValid() {
			verr.Add("status", "must be one of: pending approved rejected paid")
		} else {
			filter.Status = &status
		}
	}
	if params.From != "" {
		from, err := parseDate(params.From)
		if err != nil {
			verr.Add("from", "must be a date in YYYY-MM-DD format")
		} else {
			filter.From = &from
		}
	}
	if params.To != "" {
		to, err := parseDate(params.To)
		if err != nil {
			verr.Add("to", "must be a date in YYYY-MM-DD format")
		} else {
			// The range is inclusive of the whole "to" day.
			end := to.Add(24 * time.Hour)
			filter.To = &end
		}
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		verr.Add("to", "must not be before from")
	}
	if params.NextToken != nil && *params.NextToken != "" {
		date, id, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			verr.Add("nextToken", "is not a valid page token")
		} else {
			filter.After = &domain.VoucherCursor{Date: date, VoucherID: id}
		}
	}
	if err := verr.OrNil(); err != nil {
		return filter, err
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultVoucherPageSize
	case filter.Limit > maxVoucherPageSize:
		filter.Limit = maxVoucherPageSize
	}
	return filter, nil
}

func (s *voucherService) SummarizeVouchers(ctx context.Context, requestingUserID string) ([]domain.VoucherStatusSummary, error) {
	identity, err := s.ResolveAndAuthorize(ctx, requestingUserID, domain.ActionListVouchers)
	if err != nil {
		return nil, err
	}

	var staffID *string
	if identity.IsStaff() {
		staffID = &identity.UserID
	}

	summary, err := s.voucherRepo.SummarizeVouchers(ctx, identity.OrganizationID, staffID)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarize vouchers", slog.String("organization_id", identity.OrganizationID))
		return nil, fmt.Errorf("failed to summarize vouchers: %w", err)
	}
	return summary, nil
}
