package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/telemetry"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wholesale",
	Short: "Wholesale feed normalizer - supplier feeds to canonical product XML",
	Long: `A CLI tool that turns promotional-products wholesaler feeds (ANDA, Axpol,
Malfini, PAR, Macma) into one canonical product XML file per supplier, grouping
colour and size variants under their parent product.`,
	PersistentPreRunE: persistentPreRun,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

// persistentPreRun loads configuration and the logger before each command
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger = initLogger(cfg.Logging)
	return nil
}

func initLogger(lc config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if lc.Format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: lc.NoColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// newRunner wires tables, the run-state store and telemetry into a runner.
// The returned cleanup flushes telemetry and closes the database pool.
func newRunner(ctx context.Context) (*pipeline.Runner, storage.KeyValueStore, func(), error) {
	t, err := tables.Load(cfg.Pipeline.TablesFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load lookup tables: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
		shutdown = func(context.Context) error { return nil }
	}

	opts, err := pipeline.OptionsFromConfig(cfg, t, store, *logger)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
		closeStore()
	}
	return pipeline.NewRunner(opts), store, cleanup, nil
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
