package settlement

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/tournament"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// DeclareWinners godoc
// @Summary      Declare winners and pay out prizes
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Param        request body DeclareRequest true "Ranked winners"
// @Success      200 {array} EntryResult
// @Failure      404 {object} api.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/tournaments/{id}/winners [post]
func (h *Handler) DeclareWinners(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}
	var req DeclareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, err.Error()))
		return
	}

	results, err := h.service.DeclareWinners(c.Request.Context(), auth.UserID(c), id, req)
	if err != nil {
		if errors.Is(err, tournament.ErrTournamentNotFound) {
			c.JSON(http.StatusNotFound, api.Error(api.KindNotFound, "tournament not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to declare winners"))
		return
	}
	c.JSON(http.StatusOK, results)
}

// Winners godoc
// @Summary      List winners of a tournament
// @Tags         tournaments
// @Produce      json
// @Param        id path int true "Tournament ID"
// @Success      200 {array} Winner
// @Router       /tournaments/{id}/winners [get]
func (h *Handler) Winners(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid tournament id"))
		return
	}

	winners, err := h.service.Winners(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list winners"))
		return
	}
	c.JSON(http.StatusOK, winners)
}

// Recent godoc
// @Summary      Recently settled winners across tournaments
// @Tags         tournaments
// @Produce      json
// @Param        limit query int false "Max entries" default(10)
// @Success      200 {array} Winner
// @Router       /winners/recent [get]
func (h *Handler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	winners, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list winners"))
		return
	}
	c.JSON(http.StatusOK, winners)
}
