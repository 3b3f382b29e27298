package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/voucher_approval_app/internal/apperrors"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []apperrors.FieldError `json:"fields,omitempty"`
}

// respondWithError maps service errors onto HTTP statuses. fallback is shown for unexpected failures
// so internal details never reach the client.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		logger.Warn("Request failed validation", slog.Any("fields", verr.FieldNames()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
		return
	}

	status, message := statusForError(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
	} else {
		logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	c.JSON(status, ErrorResponse{Error: message})
}

func statusForError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, messageOr(err, "Invalid request")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, messageOr(err, "Unauthorized")
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to perform this action"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, messageOr(err, "Resource not found")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "The resource was changed by someone else, refresh and try again"
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict, messageOr(err, "Resource already exists")
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code > 0 && appErr.Code != http.StatusInternalServerError {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, fallback
}

// messageOr prefers the client-facing message of an AppError.
func messageOr(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// requireUserID reads the authenticated user or answers 401.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}
