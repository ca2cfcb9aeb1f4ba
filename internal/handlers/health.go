package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Database string `json:"database"`
}

// HealthCheck reports whether the run-state store is reachable
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{Status: "ok", Storage: "ok"}

	if _, err := h.store.List(c.Request.Context(), "health:"); err != nil {
		response.Status = "degraded"
		response.Storage = "unavailable"
	}

	if database.Pool() != nil {
		if err := database.Status(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
		} else {
			response.Database = "connected"
		}
	} else {
		response.Database = "not configured"
	}

	if response.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}
