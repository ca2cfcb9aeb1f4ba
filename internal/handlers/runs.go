package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// ListRunsRequest represents query parameters for listing last runs
type ListRunsRequest struct {
	Status string `form:"status" json:"status" jsonschema:"enum=running,enum=completed,enum=failed"`
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
	Offset int    `form:"offset" json:"offset" binding:"omitempty,min=0" jsonschema:"minimum=0"`
}

// ListRunsResponse represents the response for listing runs
type ListRunsResponse struct {
	Runs  []*types.RunResult `json:"runs" jsonschema:"required"`
	Total int                `json:"total" jsonschema:"required"`
}

// ListRuns returns the last run of every supplier, newest first
// @Summary List last supplier runs
// @Tags runs
// @Produce json
// @Param status query string false "Filter by status" Enums(running, completed, failed)
// @Param limit query int false "Number of items to return" default(20) minimum(1) maximum(100)
// @Param offset query int false "Number of items to skip" default(0) minimum(0)
// @Success 200 {object} ListRunsResponse
// @Router /internal/runs [get]
func (h *Handlers) ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	results, err := pipeline.LastResults(c.Request.Context(), h.store)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	filtered := make([]*types.RunResult, 0, len(results))
	for _, r := range results {
		if req.Status == "" || string(r.Status) == req.Status {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.After(filtered[j].StartedAt)
	})

	total := len(filtered)
	start := min(req.Offset, total)
	end := min(start+req.Limit, total)

	c.JSON(http.StatusOK, ListRunsResponse{
		Runs:  filtered[start:end],
		Total: total,
	})
}
