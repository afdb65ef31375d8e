package server

import (
	"net/http"
	"strconv"

	"github.com/saoodchoudhary/RBMEsports-Backend/internal/api"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/auth"
	"github.com/saoodchoudhary/RBMEsports-Backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        limit query int false "Max entries" default(30)
// @Success      200 {array} notify.Notification
// @Security     BearerAuth
// @Router       /notifications [get]
func notificationsHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
		notifications, err := svc.ListForUser(c.Request.Context(), auth.UserID(c), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to list notifications"))
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} api.MessageResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func markNotificationHandler(svc *notify.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, api.Error(api.KindValidation, "invalid notification id"))
			return
		}
		if err := svc.MarkRead(c.Request.Context(), auth.UserID(c), id); err != nil {
			c.JSON(http.StatusInternalServerError, api.Error(api.KindInternal, "failed to update notification"))
			return
		}
		c.JSON(http.StatusOK, api.MessageResponse{Message: "notification marked read"})
	}
}
