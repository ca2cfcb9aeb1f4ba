package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/emitter"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/telemetry"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// PersistPhase writes the sidecar metadata next to the output file
func PersistPhase(ctx context.Context, result *types.RunResult, out emitter.Result, generatedAt time.Time) error {
	_, span := telemetry.StartStage(ctx, "persist", result.Supplier)
	err := emitter.WriteSidecar(out.Path, emitter.Sidecar{
		GeneratedAt:    generatedAt.UTC(),
		Supplier:       result.Supplier,
		RunID:          result.RunID,
		Products:       out.Counts.Products,
		Simple:         out.Counts.Simple,
		Variable:       out.Counts.Variable,
		Variations:     out.Counts.Variations,
		SkippedRecords: result.Errors.Count,
		OutputSHA256:   out.SHA256,
	})
	telemetry.EndStage(span, err)
	return err
}

// SaveResult stores the run result under the supplier's run key
func SaveResult(ctx context.Context, store storage.KeyValueStore, result *types.RunResult) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}
	if err := store.Set(ctx, storage.RunKey(result.Supplier), data); err != nil {
		return fmt.Errorf("save run result: %w", err)
	}
	return nil
}

// LastResult reads the last stored run result of a supplier. It returns
// storage.ErrNotFound when the supplier never ran.
func LastResult(ctx context.Context, store storage.KeyValueStore, supplier string) (*types.RunResult, error) {
	if store == nil {
		return nil, fmt.Errorf("%s: %w", supplier, storage.ErrNotFound)
	}
	data, err := store.Get(ctx, storage.RunKey(supplier))
	if err != nil {
		return nil, err
	}
	var result types.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode run result of %s: %w", supplier, err)
	}
	return &result, nil
}

// LastResults reads the stored results of every supplier that has run
func LastResults(ctx context.Context, store storage.KeyValueStore) ([]*types.RunResult, error) {
	if store == nil {
		return nil, nil
	}
	keys, err := store.List(ctx, storage.RunKeyPrefix)
	if err != nil {
		return nil, err
	}
	results := make([]*types.RunResult, 0, len(keys))
	for _, key := range keys {
		supplier, ok := storage.SupplierFromRunKey(key)
		if !ok {
			continue
		}
		r, err := LastResult(ctx, store, supplier)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
