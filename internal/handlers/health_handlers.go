package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports process liveness and upstream connectivity.
type HealthHandler struct {
	common *CommonServices
}

func NewHealthHandler(common *CommonServices) *HealthHandler {
	return &HealthHandler{common: common}
}

// CheckHealth godoc
// @Summary Health check
// @Description Reports service status and the configured billing provider
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"provider": h.common.billing.GetServiceName(),
	})
}

// CheckReadiness godoc
// @Summary Readiness check
// @Description Verifies upstream platform credentials with a live call
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} ErrorResponse
// @Router /ready [get]
func (h *HealthHandler) CheckReadiness(c *gin.Context) {
	if err := h.common.billing.CheckConnection(c.Request.Context()); err != nil {
		sendError(c, http.StatusServiceUnavailable, "Billing platform unreachable", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
