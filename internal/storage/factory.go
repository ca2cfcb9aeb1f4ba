package storage

import (
	"context"
	"fmt"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/database"
)

// New builds the configured store. The postgres backend connects the shared pool.
func New(ctx context.Context, cfg *config.Config) (KeyValueStore, error) {
	switch StorageType(cfg.Storage.Type) {
	case StorageTypeLocal, "":
		return NewLocalStore(cfg.Storage.BasePath)
	case StorageTypePostgres:
		if err := database.Connect(ctx, cfg.Database); err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return NewPostgresStore(ctx, database.Pool(), cfg.Storage.Table)
	default:
		return nil, fmt.Errorf("storage: unknown type %q", cfg.Storage.Type)
	}
}
