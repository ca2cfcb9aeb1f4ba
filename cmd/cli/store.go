package main

import (
	"context"
	"fmt"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/config"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/database"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
)

func openStore(ctx context.Context) (storage.KeyValueStore, error) {
	if cfg.Storage.Type == string(storage.StorageTypePostgres) && cfg.Database.URL == "" {
		cfg.Database.URL = config.GetDatabaseURL()
	}
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Type, err)
	}
	return store, nil
}

func closeStore() {
	database.Close()
}
