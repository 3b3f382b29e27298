package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/voucher_approval_app/internal/core/domain"
	portssvc "github.com/SscSPs/voucher_approval_app/internal/core/ports/services"
	"github.com/SscSPs/voucher_approval_app/internal/dto"
	"github.com/SscSPs/voucher_approval_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// voucherHandler handles HTTP requests related to vouchers.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

// RegisterVoucherRoutes registers routes related to vouchers.
func RegisterVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := &voucherHandler{voucherService: voucherService}

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.createVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/summary", h.summarizeVouchers)
		vouchers.GET("/:id", h.getVoucher)
		vouchers.PUT("/:id/approve", h.approveVoucher)
		vouchers.PUT("/:id/reject", h.rejectVoucher)
		vouchers.PUT("/:id/pay", h.payVoucher)
	}
}

// createVoucher godoc
// @Summary Submit a voucher
// @Description Staff submit a spending request. Every invalid field is reported in one response.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   voucher body dto.CreateVoucherRequest true "Voucher details"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Only staff may submit vouchers"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, err, "Failed to create voucher")
		return
	}

	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers
// @Description Lists vouchers newest first. Staff only ever see their own.
// @Tags vouchers
// @Produce  json
// @Param   status query string false "pending, approved, rejected or paid"
// @Param   staffId query string false "Owner filter (admins and accountants)"
// @Param   from query string false "Earliest date, YYYY-MM-DD"
// @Param   to query string false "Latest date, YYYY-MM-DD, inclusive"
// @Param   q query string false "Text search over purpose, description, staff name and ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListVouchers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	res, err := h.voucherService.ListVouchers(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, res)
}

// summarizeVouchers godoc
// @Summary Voucher totals per status
// @Tags vouchers
// @Produce  json
// @Success 200 {object} dto.VoucherSummaryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/summary [get]
func (h *voucherHandler) summarizeVouchers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.voucherService.SummarizeVouchers(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err, "Failed to summarize vouchers")
		return
	}
	c.JSON(http.StatusOK, dto.VoucherSummaryResponse{Statuses: summary})
}

// getVoucher godoc
// @Summary Get a voucher by ID
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve voucher")
		return
	}
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// approveVoucher godoc
// @Summary Approve a pending voucher
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Not pending, or changed concurrently"
// @Security BearerAuth
// @Router /vouchers/{id}/approve [put]
func (h *voucherHandler) approveVoucher(c *gin.Context) {
	h.transition(c, domain.VoucherApproved, h.voucherService.ApproveVoucher)
}

// rejectVoucher godoc
// @Summary Reject a pending voucher
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Admins only"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Not pending, or changed concurrently"
// @Security BearerAuth
// @Router /vouchers/{id}/reject [put]
func (h *voucherHandler) rejectVoucher(c *gin.Context) {
	h.transition(c, domain.VoucherRejected, h.voucherService.RejectVoucher)
}

// payVoucher godoc
// @Summary Mark an approved voucher as paid
// @Tags vouchers
// @Produce  json
// @Param   id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Accountants only"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Not approved, or changed concurrently"
// @Security BearerAuth
// @Router /vouchers/{id}/pay [put]
func (h *voucherHandler) payVoucher(c *gin.Context) {
	h.transition(c, domain.VoucherPaid, h.voucherService.PayVoucher)
}

type transitionFunc func(ctx context.Context, requestingUserID, voucherID string) (*domain.Voucher, error)

func (h *voucherHandler) transition(c *gin.Context, to domain.VoucherStatus, apply transitionFunc) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	voucherID := c.Param("id")

	voucher, err := apply(c.Request.Context(), userID, voucherID)
	if err != nil {
		respondWithError(c, err, "Failed to update voucher")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Voucher transition applied",
		slog.String("voucher_id", voucherID),
		slog.String("status", string(to)))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}
