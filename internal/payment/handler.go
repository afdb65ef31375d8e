package payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/coupon"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type orderResponse struct {
	Order   *gateway.Order `json:"order"`
	Payment *Payment       `json:"payment"`
}

type decisionRequest struct {
	Decision       string `json:"decision" binding:"required,oneof=approve reject"`
	TransactionRef string `json:"transaction_ref"`
	Reason         string `json:"reason"`
}

type refundRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

// CreateOrder godoc
// @Summary      Create a gateway order for a pending payment
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} orderResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/order [post]
func (h *Handler) CreateOrder(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}

	order, p, err := h.service.CreateOrder(c.Request.Context(), auth.UserID(c), paymentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse{Order: order, Payment: p})
}

// Verify godoc
// @Summary      Verify a gateway callback and complete the payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body gateway.Callback true "Gateway callback fields"
// @Success      200 {object} Payment
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}
	var cb gateway.Callback
	if err := c.ShouldBindJSON(&cb); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	p, err := h.service.Verify(c.Request.Context(), auth.UserID(c), auth.IsAdmin(c), paymentID, cb)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PayWithWallet godoc
// @Summary      Pay a pending payment from wallet balance
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} Payment
// @Failure      402 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/pay-wallet [post]
func (h *Handler) PayWithWallet(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}

	p, err := h.service.PayWithWallet(c.Request.Context(), auth.UserID(c), paymentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Get godoc
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {object} Payment
// @Failure      404 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}

	p, err := h.service.Get(c.Request.Context(), auth.UserID(c), auth.IsAdmin(c), paymentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListMine godoc
// @Summary      List my payments
// @Tags         payments
// @Produce      json
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Offset" default(0)
// @Success      200 {array} Payment
// @Security     BearerAuth
// @Router       /payments [get]
func (h *Handler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.service.ListMine(c.Request.Context(), auth.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list payments"))
		return
	}
	c.JSON(http.StatusOK, payments)
}

// ListManualReview godoc
// @Summary      List payments awaiting manual review
// @Tags         admin
// @Produce      json
// @Param        status query string false "Filter by payment status"
// @Success      200 {array} Payment
// @Security     BearerAuth
// @Router       /admin/payments/manual [get]
func (h *Handler) ListManualReview(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.service.ListManualReview(c.Request.Context(), Status(c.Query("status")), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list payments"))
		return
	}
	c.JSON(http.StatusOK, payments)
}

// Decide godoc
// @Summary      Approve or reject a manually reviewed payment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body decisionRequest true "Decision"
// @Success      200 {object} Payment
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/payments/{id}/decision [post]
func (h *Handler) Decide(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	p, err := h.service.Decide(c.Request.Context(), auth.UserID(c), paymentID,
		req.Decision == "approve", req.TransactionRef, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Refund godoc
// @Summary      Refund part or all of a successful payment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Payment ID"
// @Param        request body refundRequest true "Refund amount and reason"
// @Success      200 {object} Refund
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/payments/{id}/refund [post]
func (h *Handler) Refund(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	ref, err := h.service.Refund(c.Request.Context(), auth.UserID(c), paymentID, req.Amount, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

// ListRefunds godoc
// @Summary      List refunds for a payment
// @Tags         admin
// @Produce      json
// @Param        id path int true "Payment ID"
// @Success      200 {array} Refund
// @Security     BearerAuth
// @Router       /admin/payments/{id}/refunds [get]
func (h *Handler) ListRefunds(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid payment id"))
		return
	}
	refunds, err := h.service.ListRefunds(c.Request.Context(), paymentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list refunds"))
		return
	}
	c.JSON(http.StatusOK, refunds)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, api.Error(api.KindNotFound, "payment not found"))
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.Error(api.KindForbidden, "payment belongs to another user"))
	case errors.Is(err, ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "payment signature verification failed"))
	case errors.Is(err, ErrNotPayable), errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.Error(api.KindConflict, "payment is not in a payable state"))
	case errors.Is(err, ErrRefundExceedsAmount), errors.Is(err, ErrNothingToRefund):
		c.JSON(http.StatusConflict, api.Error(api.KindPrecondition, err.Error()))
	case errors.Is(err, wallet.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, api.Error(api.KindPrecondition, "insufficient wallet balance"))
	case errors.Is(err, wallet.ErrWalletLocked):
		c.JSON(http.StatusForbidden, api.Error(api.KindForbidden, "wallet is locked"))
	case errors.Is(err, coupon.ErrCouponUsageLimitReached), errors.Is(err, ErrCouponUnusable):
		c.JSON(http.StatusConflict, api.Error(api.KindConflict, "coupon usage limit reached"))
	case errors.Is(err, gateway.ErrUnavailable):
		c.JSON(http.StatusBadGateway, api.Error(api.KindGateway, "payment gateway unavailable"))
	default:
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "payment operation failed"))
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
