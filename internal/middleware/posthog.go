package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/voucher_approval_app/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware records one analytics event per successful authenticated API call.
// The event name is the route template, e.g. "PUT /api/v1/vouchers/:id/approve" becomes
// "vouchers_id_approve", so transitions of different vouchers aggregate together.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := routeEventName(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if voucherID := c.Param("id"); voucherID != "" && strings.Contains(c.FullPath(), "/vouchers/") {
			props["voucher_id"] = voucherID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}

func routeEventName(fullPath string) string {
	trimmed := strings.TrimPrefix(fullPath, "/api/v1/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, ":", "")
	return strings.ReplaceAll(trimmed, "/", "_")
}

// PosthogEvent sends a custom event for distinctID, used by handlers that run before authentication.
func PosthogEvent(c *gin.Context, posthogClient *utils.PosthogClientWrapper, distinctID, eventName string, properties map[string]any) {
	if posthogClient == nil || !posthogClient.IsInitialized() || distinctID == "" {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["method"] = c.Request.Method
	properties["path"] = c.Request.URL.Path

	posthogClient.Enqueue(distinctID, eventName, properties)
}
