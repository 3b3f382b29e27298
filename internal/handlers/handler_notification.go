package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type notificationHandler struct {
	notificationService portssvc.NotificationInboxSvc
}

// RegisterNotificationRoutes registers the caller's notification feed and the admin broadcast.
func RegisterNotificationRoutes(rg *gin.RouterGroup, notificationService portssvc.NotificationInboxSvc) {
	h := &notificationHandler{notificationService: notificationService}

	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.listNotifications)
		notifications.POST("", h.postNotification)
		notifications.PUT("/:id/read", h.markNotificationRead)
		notifications.DELETE("/clear-all", h.clearNotifications)
	}
}

// listNotifications godoc
// @Summary List my notifications
// @Description Most recent first, with the number still unread.
// @Tags notifications
// @Produce  json
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *notificationHandler) listNotifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, dto.ToListNotificationsResponse(notifications))
}

// postNotification godoc
// @Summary Post a message to one member or the whole organization
// @Tags notifications
// @Accept  json
// @Produce  json
// @Param   notification body dto.PostNotificationRequest true "Message and optional recipient"
// @Success 201 {object} dto.PostNotificationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 404 {object} ErrorResponse "Recipient not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications [post]
func (h *notificationHandler) postNotification(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.PostNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostNotification", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	sent, err := h.notificationService.PostNotification(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err, "Failed to post notification")
		return
	}
	c.JSON(http.StatusCreated, dto.PostNotificationResponse{Recipients: len(sent)})
}

// markNotificationRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce  json
// @Param   id path string true "Notification ID"
// @Success 200 {object} dto.NotificationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [put]
func (h *notificationHandler) markNotificationRead(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkNotificationRead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to mark notification as read")
		return
	}
	c.JSON(http.StatusOK, dto.ToNotificationResponse(notification))
}

// clearNotifications godoc
// @Summary Clear the notification feed
// @Description Removes the caller's notifications and every other notification of the caller's organization.
// @Tags notifications
// @Produce  json
// @Success 200 {object} dto.ClearNotificationsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /notifications/clear-all [delete]
func (h *notificationHandler) clearNotifications(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	deleted, err := h.notificationService.ClearNotifications(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to clear notifications")
		return
	}
	c.JSON(http.StatusOK, dto.ClearNotificationsResponse{Deleted: deleted})
}
