package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/go-playground/validator/v10"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Authorizer portssvc.AuthorizerSvc
	Now        func() time.Time
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// CurrentTime returns the service clock in UTC.
func (s *BaseService) CurrentTime() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ResolveAndAuthorize loads the caller's identity and checks a non-voucher action.
func (s *BaseService) ResolveAndAuthorize(ctx context.Context, userID string, action domain.Action) (domain.Identity, error) {
	identity, err := s.Authorizer.ResolveIdentity(ctx, userID)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.Authorizer.Authorize(ctx, identity, action, nil); err != nil {
		s.LogDebug(ctx, "Action denied",
			slog.String("user_id", identity.UserID),
			slog.String("role", string(identity.Role)),
			slog.String("action", string(action)))
		return domain.Identity{}, err
	}
	return identity, nil
}

var requestValidator = validator.New(validator.WithRequiredStructEnabled())
