package wallet

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/gateway"
)

type Handler struct {
	ledger    Ledger
	gw        gateway.Gateway
	keySecret string
	minTopUp  int64
	maxTopUp  int64
}

func NewHandler(ledger Ledger, gw gateway.Gateway, keySecret string, minTopUp, maxTopUp int64) *Handler {
	return &Handler{
		ledger:    ledger,
		gw:        gw,
		keySecret: keySecret,
		minTopUp:  minTopUp,
		maxTopUp:  maxTopUp,
	}
}

type topUpOrderRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type topUpVerifyRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
	gateway.Callback
}

type withdrawRequest struct {
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	Method         string `json:"method" binding:"required,oneof=upi bank"`
	AccountDetails string `json:"account_details" binding:"required"`
}

type withdrawalInfoRequest struct {
	Method      string `json:"method" binding:"omitempty,oneof=upi bank"`
	AccountName string `json:"account_name"`
	AccountNo   string `json:"account_no"`
	IFSC        string `json:"ifsc"`
	UPIID       string `json:"upi_id"`
}

type resolveWithdrawalRequest struct {
	Decision        string `json:"decision" binding:"required,oneof=approve reject"`
	TransactionRef  string `json:"transaction_ref"`
	RejectionReason string `json:"rejection_reason"`
}

// GetBalance godoc
// @Summary      Get my wallet
// @Tags         wallet
// @Produce      json
// @Success      200 {object} Wallet
// @Security     BearerAuth
// @Router       /wallet [get]
func (h *Handler) GetBalance(c *gin.Context) {
	w, err := h.ledger.GetOrCreateWallet(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to load wallet"))
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListTransactions godoc
// @Summary      List my wallet transactions
// @Tags         wallet
// @Produce      json
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Offset" default(0)
// @Success      200 {array} Transaction
// @Security     BearerAuth
// @Router       /wallet/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := h.ledger.GetTransactions(c.Request.Context(), auth.UserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list transactions"))
		return
	}
	c.JSON(http.StatusOK, txs)
}

// CreateTopUpOrder godoc
// @Summary      Create a gateway order to add money to the wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body topUpOrderRequest true "Top-up amount"
// @Success      200 {object} gateway.Order
// @Failure      400 {object} api.ErrorResponse
// @Failure      502 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/topup/order [post]
func (h *Handler) CreateTopUpOrder(c *gin.Context) {
	var req topUpOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}
	if req.Amount < h.minTopUp || req.Amount > h.maxTopUp {
		msg := fmt.Sprintf("top-up amount must be between %d and %d", h.minTopUp, h.maxTopUp)
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, msg))
		return
	}

	userID := auth.UserID(c)
	receipt := fmt.Sprintf("WTOP-%d-%d", userID, time.Now().UnixMilli())
	order, err := h.gw.CreateOrder(c.Request.Context(), req.Amount, "INR", receipt, map[string]string{
		"purpose": "wallet_topup",
		"user_id": strconv.Itoa(userID),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, api.Error(api.KindGateway, "payment gateway unavailable"))
		return
	}
	c.JSON(http.StatusOK, order)
}

// VerifyTopUp godoc
// @Summary      Verify a top-up callback and credit the wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body topUpVerifyRequest true "Amount plus gateway callback fields"
// @Success      200 {object} Transaction
// @Failure      400 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/topup/verify [post]
func (h *Handler) VerifyTopUp(c *gin.Context) {
	var req topUpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}
	if !gateway.VerifySignature(req.Callback, h.keySecret) {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "payment signature verification failed"))
		return
	}

	tx, err := h.ledger.CreditFromGateway(c.Request.Context(), auth.UserID(c), req.Amount, req.OrderID, req.PaymentID)
	if err != nil {
		if errors.Is(err, ErrDuplicateGatewayPayment) {
			// Replayed callback: the credit already landed.
			c.JSON(http.StatusOK, api.MessageResponse{Message: "payment already credited"})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// RequestWithdrawal godoc
// @Summary      Request a withdrawal
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body withdrawRequest true "Withdrawal details"
// @Success      201 {object} Withdrawal
// @Failure      400 {object} api.ErrorResponse
// @Failure      402 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /wallet/withdraw [post]
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	wd, err := h.ledger.RequestWithdrawal(c.Request.Context(), auth.UserID(c), req.Amount, req.Method, req.AccountDetails)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wd)
}

// GetWithdrawals godoc
// @Summary      List my withdrawal requests
// @Tags         wallet
// @Produce      json
// @Success      200 {array} Withdrawal
// @Security     BearerAuth
// @Router       /wallet/withdrawals [get]
func (h *Handler) GetWithdrawals(c *gin.Context) {
	wds, err := h.ledger.GetWithdrawals(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list withdrawals"))
		return
	}
	c.JSON(http.StatusOK, wds)
}

// UpdateWithdrawalInfo godoc
// @Summary      Save withdrawal destination details
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body withdrawalInfoRequest true "Destination details"
// @Success      200 {object} Wallet
// @Security     BearerAuth
// @Router       /wallet/withdrawal-info [put]
func (h *Handler) UpdateWithdrawalInfo(c *gin.Context) {
	var req withdrawalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	w, err := h.ledger.UpdateWithdrawalInfo(c.Request.Context(), auth.UserID(c),
		req.Method, req.AccountName, req.AccountNo, req.IFSC, req.UPIID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to update withdrawal info"))
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListWithdrawals godoc
// @Summary      List withdrawal requests across users
// @Tags         admin
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, completed, rejected)
// @Success      200 {array} Withdrawal
// @Security     BearerAuth
// @Router       /admin/withdrawals [get]
func (h *Handler) ListWithdrawals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	wds, err := h.ledger.ListWithdrawals(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list withdrawals"))
		return
	}
	c.JSON(http.StatusOK, wds)
}

// ResolveWithdrawal godoc
// @Summary      Approve or reject a pending withdrawal
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Withdrawal ID"
// @Param        request body resolveWithdrawalRequest true "Decision"
// @Success      200 {object} Withdrawal
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/withdrawals/{id}/resolve [post]
func (h *Handler) ResolveWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid withdrawal id"))
		return
	}
	var req resolveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}
	if req.Decision == "reject" && req.RejectionReason == "" {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "rejection reason is required"))
		return
	}

	wd, err := h.ledger.ResolveWithdrawal(c.Request.Context(), withdrawalID, auth.UserID(c),
		req.Decision == "approve", req.TransactionRef, req.RejectionReason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wd)
}

// GetStats godoc
// @Summary      Wallet system totals
// @Tags         admin
// @Produce      json
// @Success      200 {object} Stats
// @Security     BearerAuth
// @Router       /admin/wallet/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.ledger.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to load wallet stats"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, api.Error(api.KindPrecondition, "insufficient balance"))
	case errors.Is(err, ErrWalletLocked):
		c.JSON(http.StatusForbidden, api.Error(api.KindForbidden, "wallet is locked"))
	case errors.Is(err, ErrBelowMinimumWithdrawal):
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
	case errors.Is(err, ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid amount"))
	case errors.Is(err, ErrWithdrawalNotFound):
		c.JSON(http.StatusNotFound, api.Error(api.KindNotFound, "withdrawal not found"))
	case errors.Is(err, ErrWithdrawalAlreadyResolved):
		c.JSON(http.StatusConflict, api.Error(api.KindConflict, "withdrawal already resolved"))
	default:
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "wallet operation failed"))
	}
}
