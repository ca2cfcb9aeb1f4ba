package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/categories"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/emitter"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/grouping"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/normalizer"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/resolver"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/telemetry"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// CategoryPhase flattens the category feed into id -> breadcrumb entries.
// A tree past maxDepth degrades to names without hierarchy.
func CategoryPhase(ctx context.Context, profile suppliers.Profile, feeds FeedSet, maxDepth int, logger zerolog.Logger) map[string]categories.Entry {
	_, span := telemetry.StartStage(ctx, "categories", string(profile.ID))
	var err error
	defer func() { telemetry.EndStage(span, err) }()

	coll := feeds.Get(types.FeedCategories)
	if coll == nil || coll.Len() == 0 {
		return nil
	}

	var roots []categories.Node
	switch profile.CategoryShape {
	case suppliers.CategoriesFlat:
		roots = categories.FromFlat(coll, profile.CategoryFields)
	default:
		roots = categories.FromNested(coll, profile.CategoryFields)
	}

	entries, err := categories.Flatten(roots, maxDepth, logger)
	if errors.Is(err, types.ErrCategoryTreeTooDeep) {
		logger.Warn().Err(err).
			Int("max_depth", maxDepth).
			Msg("Category tree too deep, using category names without hierarchy")
		return categories.FlatNames(roots)
	}

	logger.Info().
		Int("roots", len(roots)).
		Int("categories", len(entries)).
		Msg("Built category map")
	return entries
}

// EmitPhase groups, normalizes and streams every product into the output
// file. Simple products come first, then each variable parent followed by its
// variations, both in feed order.
func EmitPhase(ctx context.Context, profile suppliers.Profile, feeds FeedSet, categoryMap map[string]categories.Entry, opts Options, logger zerolog.Logger) (emitter.Result, types.ErrorSummary, error) {
	ctx, span := telemetry.StartStage(ctx, "emit", string(profile.ID))
	var err error
	defer func() { telemetry.EndStage(span, err) }()

	res := resolver.New(resolver.Sources{
		Prices:   feeds.Get(types.FeedPrices),
		Stock:    feeds.Get(types.FeedStock),
		Labeling: feeds.Get(types.FeedLabeling),
		Printing: feeds.printing,
	}, profile.Resolver)

	grouped := grouping.New(opts.Tables, logger).Group(feeds.Get(types.FeedProducts))
	logger.Info().
		Int("simple", len(grouped.Simple)).
		Int("variable", len(grouped.Variable)).
		Msg("Grouped products")

	norm := normalizer.New(opts.Tables, res, categoryMap, profile.Normalizer, normalizer.Options{
		Supplier:            string(profile.ID),
		DefaultRegularPrice: opts.DefaultRegularPrice,
		DefaultCategory:     opts.DefaultCategory,
	}, logger)

	path := OutputPath(opts.OutputDir, profile)
	w, err := emitter.Create(path, emitter.Options{BatchSize: opts.BatchSize, Logger: logger})
	if err != nil {
		return emitter.Result{}, res.Errors(), err
	}

	for _, s := range grouped.Simple {
		if err = ctx.Err(); err != nil {
			w.Abort()
			return emitter.Result{}, res.Errors(), err
		}
		if err = w.Write(norm.Simple(s)); err != nil {
			w.Abort()
			return emitter.Result{}, res.Errors(), err
		}
	}
	for _, g := range grouped.Variable {
		if err = ctx.Err(); err != nil {
			w.Abort()
			return emitter.Result{}, res.Errors(), err
		}
		for _, p := range norm.Variable(g) {
			if err = w.Write(p); err != nil {
				w.Abort()
				return emitter.Result{}, res.Errors(), err
			}
		}
	}

	out, err := w.Close()
	if err != nil {
		return emitter.Result{}, res.Errors(), fmt.Errorf("close output: %w", err)
	}
	return out, res.Errors(), nil
}

// OutputPath is where the canonical file of profile is written
func OutputPath(outputDir string, profile suppliers.Profile) string {
	name := profile.OutputFile
	if name == "" {
		name = string(profile.ID) + ".xml"
	}
	return filepath.Join(outputDir, name)
}
