package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has no value
var ErrNotFound = errors.New("key not found")

// KeyValueStore persists small opaque values (run results) by string key.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns the value stored at key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// List returns keys starting with prefix in ascending order
	List(ctx context.Context, prefix string) ([]string, error)
}

// StorageType represents the type of storage backend
type StorageType string

const (
	StorageTypeLocal    StorageType = "local"
	StorageTypePostgres StorageType = "postgres"
)

// RunKey is the key under which the last run result of a supplier is kept
func RunKey(supplier string) string {
	return fmt.Sprintf("run:%s:last", supplier)
}

// RunKeyPrefix prefixes every run-result key
const RunKeyPrefix = "run:"

// SupplierFromRunKey extracts the supplier id from a RunKey
func SupplierFromRunKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, RunKeyPrefix)
	if !ok {
		return "", false
	}
	supplier, ok := strings.CutSuffix(rest, ":last")
	if !ok || supplier == "" {
		return "", false
	}
	return supplier, true
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	return nil
}
