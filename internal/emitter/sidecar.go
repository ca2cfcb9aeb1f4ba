package emitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

// SidecarSuffix is appended to the output path to name the metadata file
const SidecarSuffix = ".meta.json"

// Sidecar is the metadata file written next to every output file, read by
// schedulers for staleness checks
type Sidecar struct {
	GeneratedAt    time.Time `json:"generated_at"`
	Supplier       string    `json:"supplier"`
	RunID          string    `json:"run_id,omitempty"`
	Products       int       `json:"products"`
	Simple         int       `json:"simple"`
	Variable       int       `json:"variable"`
	Variations     int       `json:"variations"`
	SkippedRecords int       `json:"skipped_records"`
	OutputSHA256   string    `json:"output_sha256"`
}

// SidecarPath returns the metadata path of an output file
func SidecarPath(outputPath string) string {
	return outputPath + SidecarSuffix
}

// WriteSidecar writes the metadata of an output file atomically
func WriteSidecar(outputPath string, s Sidecar) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal sidecar: %v", types.ErrOutputWriteFailed, err)
	}

	path := SidecarPath(outputPath)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", types.ErrOutputWriteFailed, err)
	}
	return nil
}

// ReadSidecar reads the metadata of an output file
func ReadSidecar(outputPath string) (*Sidecar, error) {
	data, err := os.ReadFile(SidecarPath(outputPath))
	if err != nil {
		return nil, err
	}
	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid sidecar: %w", err)
	}
	return &s, nil
}
