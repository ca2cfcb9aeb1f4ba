package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/database"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/handlers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/middleware"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/telemetry"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting wholesale feed service")

	if cfg.Server.InternalAPIKey == "" {
		logger.Fatal().Msg("INTERNAL_API_KEY not set")
	}

	ctx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	if cfg.Storage.Type == string(storage.StorageTypePostgres) && cfg.Database.URL == "" {
		cfg.Database.URL = config.GetDatabaseURL()
	}
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("type", cfg.Storage.Type).Msg("Failed to open run-state store")
	}
	defer database.Close()
	logger.Info().Str("type", cfg.Storage.Type).Msg("Run-state store ready")

	markInterruptedRuns(ctx, store, logger)

	t, err := tables.Load(cfg.Pipeline.TablesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load lookup tables")
	}
	opts, err := pipeline.OptionsFromConfig(cfg, t, store, *logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid pipeline configuration")
	}
	runner := pipeline.NewRunner(opts)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	rl := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimit.RequestsPerSecond > 0 {
		rl.RequestsPerSecond = float64(cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.RateLimit.Burst > 0 {
		rl.BurstSize = cfg.RateLimit.Burst
	}

	handlers.New(ctx, runner, suppliers.DefaultRegistry, store, *logger).Register(
		router,
		middleware.InternalAuthMiddleware(cfg.Server.InternalAPIKey),
		middleware.RateLimitMiddleware(ctx, rl),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Background runs observe cancellation between batches and record a
	// failed result before returning.
	cancelRuns()
	runner.Wait()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// markInterruptedRuns rewrites results left in the running state by a
// previous process that did not shut down cleanly.
func markInterruptedRuns(ctx context.Context, store storage.KeyValueStore, logger *zerolog.Logger) {
	results, err := pipeline.LastResults(ctx, store)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list previous runs")
		return
	}

	count := 0
	for _, r := range results {
		if r.Status != types.RunStatusRunning {
			continue
		}
		now := time.Now().UTC()
		r.Status = types.RunStatusFailed
		r.Success = false
		r.Message = "interrupted: service restarted during processing"
		r.CompletedAt = &now
		if err := pipeline.SaveResult(ctx, store, r); err != nil {
			logger.Error().Err(err).Str("supplier", r.Supplier).Msg("Failed to mark run as interrupted")
			continue
		}
		logger.Info().
			Str("supplier", r.Supplier).
			Str("runId", r.RunID).
			Time("startedAt", r.StartedAt).
			Msg("Marked interrupted run")
		count++
	}

	if count == 0 {
		logger.Info().Msg("No interrupted runs found")
		return
	}
	logger.Info().Int("count", count).Msg("Handled interrupted runs")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "wholesale-feeds").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
