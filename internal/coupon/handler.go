package coupon

import (
	"net/http"
	"strconv"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Store
}

func NewHandler(repo Store) *Handler {
	return &Handler{repo: repo}
}

// Create godoc
// @Summary      Create coupon
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Coupon definition"
// @Success      201 {object} Coupon
// @Failure      400 {object} api.ErrorResponse
// @Router       /admin/coupons [post]
func (h *Handler) Create(c *gin.Context) {
	adminID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.Error(api.KindUnauthorized, "user not authenticated"))
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	if req.DiscountType == string(DiscountPercent) && (req.DiscountValue < 1 || req.DiscountValue > 100) {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "percent discount value must be 1..100"))
		return
	}

	cp, err := h.repo.Create(c.Request.Context(), req, adminID)
	if err != nil {
		c.JSON(http.StatusConflict, api.Error(api.KindConflict, "failed to create coupon (duplicate code?)"))
		return
	}

	c.JSON(http.StatusCreated, cp)
}

// List godoc
// @Summary      List coupons
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} Coupon
// @Router       /admin/coupons [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	coupons, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list coupons"))
		return
	}

	c.JSON(http.StatusOK, coupons)
}

// Deactivate godoc
// @Summary      Deactivate coupon
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        couponID path int true "Coupon ID"
// @Success      200 {object} api.MessageResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/coupons/{couponID} [delete]
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("couponID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid coupon ID"))
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, api.Error(api.KindNotFound, "coupon not found"))
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "coupon deactivated"})
}
