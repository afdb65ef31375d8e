package tournament

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/coupon"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type previewCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// List godoc
// @Summary      List tournaments
// @Tags         tournaments
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        game query string false "Filter by game"
// @Success      200 {array} Tournament
// @Router       /tournaments [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tournaments, err := h.service.List(c.Request.Context(), Status(c.Query("status")), c.Query("game"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list tournaments"))
		return
	}
	c.JSON(http.StatusOK, tournaments)
}

// Get godoc
// @Summary      Get a tournament
// @Tags         tournaments
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Success      200 {object} Tournament
// @Failure      404 {object} api.ErrorResponse
// @Router       /tournaments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}

	t, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Register godoc
// @Summary      Register for a tournament
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Param        request body RegisterRequest true "Registration payload"
// @Success      201 {object} Registration
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /tournaments/{id}/register [post]
func (h *Handler) Register(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	reg, err := h.service.Register(c.Request.Context(), auth.UserID(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// PreviewCoupon godoc
// @Summary      Price a coupon against a tournament entry fee
// @Tags         tournaments
// @Accept       json
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Param        request body previewCouponRequest true "Coupon code"
// @Success      200 {object} coupon.Result
// @Failure      400 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /tournaments/{id}/coupon/preview [post]
func (h *Handler) PreviewCoupon(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}
	var req previewCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	result, err := h.service.PreviewCoupon(c.Request.Context(), auth.UserID(c), id, req.Code)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MyRegistration godoc
// @Summary      Get my registration in a tournament
// @Tags         tournaments
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Success      200 {object} Registration
// @Failure      404 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /tournaments/{id}/my-registration [get]
func (h *Handler) MyRegistration(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}

	p, team, err := h.service.MyRegistration(c.Request.Context(), id, auth.UserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": p, "team": team})
}

// ListMine godoc
// @Summary      List tournaments I am registered in
// @Tags         tournaments
// @Produce      json
// @Success      200 {array} Tournament
// @Security     BearerAuth
// @Router       /tournaments/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	tournaments, err := h.service.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list registrations"))
		return
	}
	c.JSON(http.StatusOK, tournaments)
}

// Create godoc
// @Summary      Create a tournament
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Tournament definition"
// @Success      201 {object} Tournament
// @Security     BearerAuth
// @Router       /admin/tournaments [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	t, err := h.service.Create(c.Request.Context(), req, auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to create tournament"))
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Update godoc
// @Summary      Update a tournament
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Param        request body UpdateRequest true "Fields to change"
// @Success      200 {object} Tournament
// @Failure      404 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/tournaments/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	t, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// SetRoom godoc
// @Summary      Set the match room credentials
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Param        request body RoomRequest true "Room credentials"
// @Success      200 {object} api.MessageResponse
// @Security     BearerAuth
// @Router       /admin/tournaments/{id}/room [put]
func (h *Handler) SetRoom(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	if err := h.service.SetRoom(c.Request.Context(), id, req.RoomID, req.RoomPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "room updated"})
}

// Cancel godoc
// @Summary      Cancel a tournament
// @Tags         admin
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Success      200 {object} api.MessageResponse
// @Security     BearerAuth
// @Router       /admin/tournaments/{id} [delete]
func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "tournament cancelled"})
}

// Participants godoc
// @Summary      List participants of a tournament
// @Tags         admin
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Success      200 {array} Participant
// @Security     BearerAuth
// @Router       /admin/tournaments/{id}/participants [get]
func (h *Handler) Participants(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}

	participants, err := h.service.Participants(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list participants"))
		return
	}
	c.JSON(http.StatusOK, participants)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTournamentNotFound), errors.Is(err, ErrParticipantNotFound),
		errors.Is(err, user.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.Error(api.KindNotFound, err.Error()))
	case errors.Is(err, ErrRegistrationClosed), errors.Is(err, ErrGameProfileRequired):
		c.JSON(http.StatusUnprocessableEntity, api.Error(api.KindPrecondition, err.Error()))
	case errors.Is(err, ErrTournamentFull), errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, api.Error(api.KindConflict, err.Error()))
	case errors.Is(err, ErrInvalidTeamSize), errors.Is(err, ErrTeamNameRequired):
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
	case errors.Is(err, coupon.ErrCouponNotFound), errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponNotApplicable), errors.Is(err, coupon.ErrCouponNotAllowedForUser),
		errors.Is(err, coupon.ErrCouponNotAllowedForGameID), errors.Is(err, coupon.ErrMinimumOrderNotMet),
		errors.Is(err, coupon.ErrCouponUsageLimitReached), errors.Is(err, coupon.ErrPerUserUsageLimitReached):
		c.JSON(http.StatusUnprocessableEntity, api.Error(api.KindPrecondition, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "tournament operation failed"))
	}
}
