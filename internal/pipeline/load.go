package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/archive"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/feed"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/resolver"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/telemetry"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// maxLoggedRecordErrors is how many record errors per feed are logged one by one
const maxLoggedRecordErrors = 5

// FeedSet holds the collections loaded for one run; optional feeds may be nil
type FeedSet struct {
	byKind   map[types.FeedKind]*types.Collection
	printing resolver.PrintingPrices
}

func (f FeedSet) Get(kind types.FeedKind) *types.Collection {
	return f.byKind[kind]
}

// LoadPhase reads every feed of the profile. A missing or malformed required
// feed fails the phase; optional feeds are logged and left empty.
func LoadPhase(ctx context.Context, profile suppliers.Profile, inputDir string, result *types.RunResult, logger zerolog.Logger) (FeedSet, error) {
	_, span := telemetry.StartStage(ctx, "load", string(profile.ID))
	var err error
	defer func() { telemetry.EndStage(span, err) }()

	set := FeedSet{byKind: make(map[types.FeedKind]*types.Collection)}
	dir := filepath.Join(inputDir, profile.Dir)

	if err = unpackArchives(ctx, dir, logger); err != nil {
		return set, err
	}

	for _, spec := range profile.Feeds {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return set, err
		}

		start := time.Now()
		coll, stats, loadErr := feed.Load(dir, spec)
		result.Feeds[spec.Name()] = stats
		result.Errors.Merge(stats.Errors)
		logRecordErrors(logger, spec.Name(), stats.Errors)

		if loadErr != nil {
			if spec.Required {
				err = fmt.Errorf("required feed %s: %w", spec.Name(), loadErr)
				return set, err
			}
			event := logger.Warn()
			if errors.Is(loadErr, types.ErrSourceNotFound) {
				event = logger.Info()
			}
			event.Err(loadErr).
				Str("feed", spec.Name()).
				Msg("Optional feed unavailable, continuing without it")
			continue
		}

		logger.Info().
			Str("feed", spec.Name()).
			Int("elements", stats.Elements).
			Int("collected", stats.Collected).
			Int("skipped", stats.Skipped).
			Bool("truncated", stats.Truncated).
			Dur("duration", time.Since(start)).
			Msg("Loaded feed")
		if stats.Truncated {
			logger.Warn().Str("feed", spec.Name()).Msg("Feed ended early, records read so far are kept")
		}

		set.byKind[spec.Kind] = coll
	}

	if set.Get(types.FeedProducts) == nil {
		err = fmt.Errorf("%w: no product feed configured", types.ErrSourceNotFound)
		return set, err
	}

	if profile.PrintingPrices != "" {
		path := profile.PrintingPrices
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		prices, loadErr := resolver.LoadPrintingPrices(path)
		if loadErr != nil {
			logger.Warn().Err(loadErr).
				Str("feed", string(types.FeedPrinting)).
				Msg("Printing price table unavailable, continuing without it")
		} else {
			set.printing = prices
			logger.Info().
				Str("feed", string(types.FeedPrinting)).
				Int("technologies", len(prices)).
				Msg("Loaded printing price table")
		}
	}

	return set, nil
}

// unpackArchives expands every zip in the supplier directory in name order, so
// feeds shipped zipped are read like plain files. An unreadable archive is
// logged and skipped; only cancellation stops the phase.
func unpackArchives(ctx context.Context, dir string, logger zerolog.Logger) error {
	archives, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return err
	}
	sort.Strings(archives)

	opts := archive.DefaultOptions()
	opts.Logger = logger
	for _, a := range archives {
		entries, expandErr := archive.Expand(ctx, a, dir, opts)
		if expandErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn().Err(expandErr).
				Str("archive", filepath.Base(a)).
				Msg("Failed to unpack feed archive, continuing with files on disk")
			continue
		}
		for _, e := range entries {
			logger.Debug().
				Str("archive", filepath.Base(a)).
				Str("member", e.Name).
				Int64("size", e.Size).
				Str("sha256", e.SHA256).
				Msg("Unpacked feed")
		}
		logger.Info().
			Str("archive", filepath.Base(a)).
			Int("files", len(entries)).
			Msg("Unpacked feed archive")
	}
	return nil
}

// logRecordErrors logs the first few record errors individually and the rest
// as a count
func logRecordErrors(logger zerolog.Logger, feedName string, summary types.ErrorSummary) {
	if summary.Count == 0 {
		return
	}
	logger.Warn().
		Int("error_count", summary.Count).
		Str("feed", feedName).
		Msg("Record errors found")

	shown := min(len(summary.Samples), maxLoggedRecordErrors)
	for _, e := range summary.Samples[:shown] {
		logger.Warn().
			Str("feed", e.Feed).
			Str("item_key", e.ItemKey).
			Str("field", e.Field).
			Str("error", e.Message).
			Msg("Record error")
	}
	if summary.Count > shown {
		logger.Warn().
			Int("additional_error_count", summary.Count-shown).
			Str("feed", feedName).
			Msg("Additional record errors not shown")
	}
}
