package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type organizationHandler struct {
	organizationService portssvc.OrganizationSvcFacade
}

// RegisterOrganizationRoutes registers routes acting on the caller's own organization.
func RegisterOrganizationRoutes(rg *gin.RouterGroup, organizationService portssvc.OrganizationSvcFacade) {
	h := &organizationHandler{organizationService: organizationService}

	rg.GET("/organization", h.getOrganization)
	rg.DELETE("/organization", h.deleteOrganization)
}

// getOrganization godoc
// @Summary Get my organization
// @Tags organization
// @Produce  json
// @Success 200 {object} dto.OrganizationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /organization [get]
func (h *organizationHandler) getOrganization(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganization(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to retrieve organization")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

// deleteOrganization godoc
// @Summary Delete my organization
// @Description Removes the organization with all its users, vouchers and notifications. Main admin only.
// @Tags organization
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /organization [delete]
func (h *organizationHandler) deleteOrganization(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.organizationService.DeleteOrganization(c.Request.Context(), userID); err != nil {
		respondWithError(c, err, "Failed to delete organization")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Organization deleted by main admin")
	c.Status(http.StatusNoContent)
}
