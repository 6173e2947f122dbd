package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dermaplan/booking-api/internal/models"
)

type rolloutHealthService interface {
	Health(ctx context.Context) models.RolloutHealth
}

// RolloutHandler exposes the migration health comparison for operators.
type RolloutHandler struct {
	service rolloutHealthService
}

// NewRolloutHandler constructs the handler.
func NewRolloutHandler(svc rolloutHealthService) *RolloutHandler {
	return &RolloutHandler{service: svc}
}

// Health godoc
// @Summary Probe both booking backends
// @Tags Rollout
// @Produce json
// @Success 200 {object} models.RolloutHealth
// @Router /admin/rollout/health [get]
func (h *RolloutHandler) Health(c *gin.Context) {
	if h == nil || h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rollout service unavailable"})
		return
	}
	health := h.service.Health(c.Request.Context())
	status := http.StatusOK
	if !health.Self.Reachable {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}
