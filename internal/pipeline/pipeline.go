// Package pipeline runs one supplier from input feeds to the canonical output
// file: load, categories, resolve, group, normalize, emit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/categories"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/emitter"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/metrics"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// ErrRunInProgress is returned when a supplier already has a run executing
var ErrRunInProgress = errors.New("run already in progress")

// Options configure every run of a Runner
type Options struct {
	InputDir            string
	OutputDir           string
	Tables              *tables.Tables
	Store               storage.KeyValueStore
	Metrics             *metrics.Recorder
	Logger              zerolog.Logger
	DefaultRegularPrice decimal.Decimal
	DefaultCategory     string
	BatchSize           int
	MaxCategoryDepth    int
	ParallelSuppliers   int
	// Now stamps the sidecar and run result; defaults to time.Now
	Now func() time.Time
}

// OptionsFromConfig maps service configuration onto run options
func OptionsFromConfig(cfg *config.Config, t *tables.Tables, store storage.KeyValueStore, logger zerolog.Logger) (Options, error) {
	price, err := decimal.NewFromString(cfg.Pipeline.DefaultRegularPrice)
	if err != nil {
		return Options{}, fmt.Errorf("pipeline.default_regular_price: %w", err)
	}
	return Options{
		InputDir:            cfg.Paths.InputDir,
		OutputDir:           cfg.Paths.OutputDir,
		Tables:              t,
		Store:               store,
		Metrics:             metrics.NewRecorder(),
		Logger:              logger,
		DefaultRegularPrice: price,
		DefaultCategory:     cfg.Pipeline.DefaultCategory,
		BatchSize:           cfg.Pipeline.BatchSize,
		MaxCategoryDepth:    cfg.Pipeline.MaxCategoryDepth,
		ParallelSuppliers:   cfg.Pipeline.ParallelSuppliers,
	}, nil
}

// Runner executes supplier runs and allows one run per supplier at a time
type Runner struct {
	opts Options

	mu     sync.Mutex
	active map[suppliers.SupplierID]string
	wg     sync.WaitGroup
}

// NewRunner creates a runner
func NewRunner(opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRecorder()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = emitter.DefaultBatchSize
	}
	if opts.MaxCategoryDepth <= 0 {
		opts.MaxCategoryDepth = categories.DefaultMaxDepth
	}
	if opts.ParallelSuppliers <= 0 {
		opts.ParallelSuppliers = 1
	}
	return &Runner{opts: opts, active: make(map[suppliers.SupplierID]string)}
}

// Run executes one supplier run with a fresh Runner
func Run(ctx context.Context, profile *suppliers.Profile, opts Options) (*types.RunResult, error) {
	return NewRunner(opts).Run(ctx, profile)
}

// InProgress returns the run id of the supplier's executing run, if any
func (r *Runner) InProgress(id suppliers.SupplierID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runID, ok := r.active[id]
	return runID, ok
}

func (r *Runner) acquire(id suppliers.SupplierID, runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[id]; busy {
		return false
	}
	r.active[id] = runID
	return true
}

func (r *Runner) release(id suppliers.SupplierID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// Run executes the pipeline for one supplier. Run-level failures (missing
// product feed, unwritable output) are reported in the result with
// Success=false; an error is returned only for invalid arguments or when the
// supplier is already running.
func (r *Runner) Run(ctx context.Context, profile *suppliers.Profile) (*types.RunResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("pipeline: nil profile")
	}
	if r.opts.Tables == nil {
		return nil, fmt.Errorf("pipeline: nil lookup tables")
	}

	runID := uuid.NewString()
	if !r.acquire(profile.ID, runID) {
		return nil, fmt.Errorf("%s: %w", profile.ID, ErrRunInProgress)
	}
	defer r.release(profile.ID)

	return r.execute(ctx, *profile, runID), nil
}

// Start launches a run in the background and returns its id immediately
func (r *Runner) Start(ctx context.Context, profile *suppliers.Profile) (string, error) {
	if profile == nil {
		return "", fmt.Errorf("pipeline: nil profile")
	}
	if r.opts.Tables == nil {
		return "", fmt.Errorf("pipeline: nil lookup tables")
	}

	runID := uuid.NewString()
	if !r.acquire(profile.ID, runID) {
		return "", fmt.Errorf("%s: %w", profile.ID, ErrRunInProgress)
	}

	p := *profile
	r.wg.Go(func() {
		defer r.release(p.ID)
		r.execute(ctx, p, runID)
	})
	return runID, nil
}

// Wait blocks until every run launched with Start has finished
func (r *Runner) Wait() {
	r.wg.Wait()
}

// RunAll runs the given suppliers concurrently, at most ParallelSuppliers at
// a time. Each supplier run stays sequential. Results keep the input order.
func (r *Runner) RunAll(ctx context.Context, profiles []suppliers.Profile) ([]*types.RunResult, error) {
	results := make([]*types.RunResult, len(profiles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.ParallelSuppliers)
	for i := range profiles {
		p := &profiles[i]
		g.Go(func() error {
			res, err := r.Run(gctx, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) execute(ctx context.Context, profile suppliers.Profile, runID string) *types.RunResult {
	supplier := string(profile.ID)
	logger := r.opts.Logger.With().
		Str("supplier", supplier).
		Str("run_id", runID).
		Logger()

	start := r.opts.Now()
	result := &types.RunResult{
		RunID:     runID,
		Supplier:  supplier,
		Status:    types.RunStatusRunning,
		Feeds:     make(map[string]types.ReadStats),
		StartedAt: start,
	}
	if err := SaveResult(ctx, r.opts.Store, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to store running status")
	}

	r.opts.Metrics.RunStarted(supplier)
	logger.Info().Str("input_dir", r.opts.InputDir).Msg("Starting supplier run")

	r.runStages(ctx, profile, result, logger)

	completed := r.opts.Now()
	result.CompletedAt = types.TimePtr(completed)
	if result.Success {
		result.Status = types.RunStatusCompleted
		logger.Info().
			Str("output", result.OutputPath).
			Int("products", result.Counts.Products).
			Int("simple", result.Counts.Simple).
			Int("variable", result.Counts.Variable).
			Int("variations", result.Counts.Variations).
			Int("skipped_records", result.Errors.Count).
			Dur("duration", completed.Sub(start)).
			Msg("Supplier run complete")
	} else {
		result.Status = types.RunStatusFailed
		logger.Error().Str("reason", result.Message).Msg("Supplier run failed")
	}
	r.opts.Metrics.RunFinished(supplier, result.Success, completed.Sub(start))

	// the stored status must not depend on a cancelled run context
	if err := SaveResult(context.WithoutCancel(ctx), r.opts.Store, result); err != nil {
		logger.Warn().Err(err).Msg("Failed to store run result")
	}
	return result
}

func (r *Runner) runStages(ctx context.Context, profile suppliers.Profile, result *types.RunResult, logger zerolog.Logger) {
	supplier := string(profile.ID)

	stage := time.Now()
	feeds, err := LoadPhase(ctx, profile, r.opts.InputDir, result, logger)
	r.opts.Metrics.Stage(supplier, "load", time.Since(stage))
	for name, stats := range result.Feeds {
		r.opts.Metrics.FeedRead(supplier, name, stats.Collected, stats.Skipped)
	}
	if err != nil {
		result.Message = fmt.Sprintf("load failed: %v", err)
		return
	}

	stage = time.Now()
	categoryMap := CategoryPhase(ctx, profile, feeds, r.opts.MaxCategoryDepth, logger)
	r.opts.Metrics.Stage(supplier, "categories", time.Since(stage))

	stage = time.Now()
	out, recordErrors, err := EmitPhase(ctx, profile, feeds, categoryMap, r.opts, logger)
	r.opts.Metrics.Stage(supplier, "emit", time.Since(stage))
	result.Errors.Merge(recordErrors)
	logRecordErrors(logger, "resolver", recordErrors)
	if err != nil {
		result.Message = fmt.Sprintf("emit failed: %v", err)
		return
	}
	result.OutputPath = out.Path
	result.Counts = out.Counts
	r.opts.Metrics.ProductsEmitted(supplier, out.Counts.Simple, out.Counts.Variable, out.Counts.Variations)

	if err := PersistPhase(ctx, result, out, r.opts.Now()); err != nil {
		result.Message = fmt.Sprintf("sidecar write failed: %v", err)
		return
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d products written", out.Counts.Products)
}
