package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// RunStarter starts background supplier runs; *pipeline.Runner implements it
type RunStarter interface {
	Start(ctx context.Context, profile *suppliers.Profile) (string, error)
	InProgress(id suppliers.SupplierID) (string, bool)
}

// Handlers serves the admin routes
type Handlers struct {
	runner   RunStarter
	registry *suppliers.Registry
	store    storage.KeyValueStore
	logger   zerolog.Logger
	// runCtx outlives requests; background runs use it
	runCtx context.Context
}

// New creates the admin handlers. runCtx bounds background runs.
func New(runCtx context.Context, runner RunStarter, registry *suppliers.Registry, store storage.KeyValueStore, logger zerolog.Logger) *Handlers {
	return &Handlers{
		runner:   runner,
		registry: registry,
		store:    store,
		logger:   logger,
		runCtx:   runCtx,
	}
}

// SupplierInfo is one entry of the supplier list
type SupplierInfo struct {
	ID         string           `json:"id" jsonschema:"required"`
	Name       string           `json:"name" jsonschema:"required"`
	Feeds      []types.FeedKind `json:"feeds"`
	OutputFile string           `json:"outputFile"`
	Running    bool             `json:"running"`
}

// BuildStartedResponse is returned with 202 when a run is started
type BuildStartedResponse struct {
	RunID   string `json:"runId"`
	Status  string `json:"status"`
	PollURL string `json:"pollUrl"`
	Message string `json:"message,omitempty"`
}

// ListSuppliers returns every registered supplier
// GET /internal/suppliers
func (h *Handlers) ListSuppliers(c *gin.Context) {
	ids := h.registry.List()
	out := make([]SupplierInfo, 0, len(ids))
	for _, id := range ids {
		p, err := h.registry.Get(id)
		if err != nil {
			continue
		}
		info := SupplierInfo{ID: string(p.ID), Name: p.Name, OutputFile: p.OutputFile}
		for _, f := range p.Feeds {
			info.Feeds = append(info.Feeds, f.Kind)
		}
		_, info.Running = h.runner.InProgress(p.ID)
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": out, "total": len(out)})
}

// BuildSupplier starts a run for one supplier asynchronously
// POST /internal/suppliers/:id/build
// Returns 202 Accepted with the run id, 409 if the supplier is already running
func (h *Handlers) BuildSupplier(c *gin.Context) {
	id := c.Param("id")
	profile, err := h.registry.Get(suppliers.SupplierID(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown supplier: %s", id)})
		return
	}

	runID, err := h.runner.Start(h.runCtx, &profile)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		current, _ := h.runner.InProgress(profile.ID)
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("a run for %s is already in progress", id),
			"runId": current,
		})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("supplier", id).Msg("Failed to start run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start run"})
		return
	}

	h.logger.Info().Str("supplier", id).Str("run_id", runID).Msg("Run started")
	c.JSON(http.StatusAccepted, BuildStartedResponse{
		RunID:   runID,
		Status:  string(types.RunStatusRunning),
		PollURL: fmt.Sprintf("/internal/suppliers/%s/status", id),
		Message: fmt.Sprintf("Build started for supplier %s", id),
	})
}

// SupplierStatus returns the last stored run result of a supplier
// GET /internal/suppliers/:id/status
func (h *Handlers) SupplierStatus(c *gin.Context) {
	id := c.Param("id")
	if !h.registry.IsRegistered(suppliers.SupplierID(id)) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown supplier: %s", id)})
		return
	}

	result, err := pipeline.LastResult(c.Request.Context(), h.store, id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no runs recorded for %s", id)})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("supplier", id).Msg("Failed to read run status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read run status"})
		return
	}
	c.JSON(http.StatusOK, result)
}
