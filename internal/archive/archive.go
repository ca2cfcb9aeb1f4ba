// Package archive unpacks zipped supplier feeds next to the archive so the
// feed readers can open the members as plain files.
package archive

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/feed"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

var (
	// ErrTooLarge is returned when a member or the whole archive exceeds its limit
	ErrTooLarge = errors.New("archive content too large")
	// ErrTooManyFiles is returned when the archive holds more members than allowed
	ErrTooManyFiles = errors.New("too many files in archive")
)

// Options limits what Expand extracts
type Options struct {
	// MaxFileSize is the maximum size for a single member in bytes (0 = unlimited)
	MaxFileSize int64
	// MaxTotalSize is the maximum total size for all members (0 = unlimited)
	MaxTotalSize int64
	// MaxFiles is the maximum number of members to extract (0 = unlimited)
	MaxFiles int
	// AllowedExtensions filters which member extensions are extracted (empty = all)
	AllowedExtensions []string
	// SkipPatterns skips members whose path inside the archive contains any pattern
	SkipPatterns []string
	Logger       zerolog.Logger
}

// DefaultOptions returns limits suited to supplier feed archives
func DefaultOptions() Options {
	return Options{
		MaxFileSize:       512 * 1024 * 1024,
		MaxTotalSize:      2 * 1024 * 1024 * 1024,
		MaxFiles:          1000,
		AllowedExtensions: []string{".xml", ".json", ".csv", ".txt", ".xlsx"},
		SkipPatterns:      []string{"__MACOSX", ".DS_Store", "Thumbs.db", "desktop.ini"},
		Logger:            zerolog.Nop(),
	}
}

// Entry describes one extracted member
type Entry struct {
	Name   string         `json:"name"`
	Type   types.FileType `json:"type"`
	Size   int64          `json:"size"`
	SHA256 string         `json:"sha256"`
}

// Expand extracts the members of the zip at archivePath into destDir.
// Directory structure inside the archive is flattened; when two members share
// a base name the first one is kept and the rest are logged. Each member is
// written to a temporary file first, so a failed extraction never leaves a
// truncated feed behind. A missing archive yields types.ErrSourceNotFound.
func Expand(ctx context.Context, archivePath, destDir string, opts Options) ([]Entry, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrSourceNotFound, archivePath)
		}
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrSourceUnreadable, archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", destDir, err)
	}

	var (
		entries   []Entry
		totalSize int64
		fileCount int
		// flattened name -> member path it was extracted from
		seen = make(map[string]string)
	)
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		memberPath, safeName, err := sanitizeFilename(file.Name)
		if err != nil {
			continue
		}
		if opts.shouldSkip(memberPath) || !opts.isAllowedExtension(safeName) {
			continue
		}
		if first, dup := seen[safeName]; dup {
			opts.Logger.Warn().
				Str("archive", filepath.Base(archivePath)).
				Str("member", memberPath).
				Str("kept", first).
				Msg("Duplicate file name in archive, keeping the first one")
			continue
		}
		seen[safeName] = memberPath

		fileCount++
		if opts.MaxFiles > 0 && fileCount > opts.MaxFiles {
			return nil, fmt.Errorf("%w (limit: %d)", ErrTooManyFiles, opts.MaxFiles)
		}
		if opts.MaxFileSize > 0 && int64(file.UncompressedSize64) > opts.MaxFileSize {
			return nil, fmt.Errorf("%w: %s declares %d bytes (limit: %d)",
				ErrTooLarge, safeName, file.UncompressedSize64, opts.MaxFileSize)
		}

		entry, err := extractFile(ctx, file, safeName, destDir, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}

		totalSize += entry.Size
		if opts.MaxTotalSize > 0 && totalSize > opts.MaxTotalSize {
			return nil, fmt.Errorf("%w: total extracted size exceeds %d", ErrTooLarge, opts.MaxTotalSize)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// extractFile copies one member through a size-limited reader into destDir
func extractFile(ctx context.Context, file *zip.File, safeName, destDir string, maxSize int64) (Entry, error) {
	rc, err := file.Open()
	if err != nil {
		return Entry{}, fmt.Errorf("open %s in archive: %w", safeName, err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if maxSize > 0 {
		// One extra byte detects members whose real size exceeds the header
		src = io.LimitReader(rc, maxSize+1)
	}

	tmp, err := os.CreateTemp(destDir, "."+safeName+".*.tmp")
	if err != nil {
		return Entry{}, fmt.Errorf("create temp file for %s: %w", safeName, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hasher), &ctxReader{ctx: ctx, r: src})
	closeErr := tmp.Close()
	if err != nil {
		return Entry{}, fmt.Errorf("extract %s: %w", safeName, err)
	}
	if closeErr != nil {
		return Entry{}, fmt.Errorf("extract %s: %w", safeName, closeErr)
	}
	if maxSize > 0 && written > maxSize {
		return Entry{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, safeName, maxSize)
	}

	if err := os.Rename(tmpName, filepath.Join(destDir, safeName)); err != nil {
		return Entry{}, fmt.Errorf("move %s into place: %w", safeName, err)
	}

	fileType, _ := feed.DetectFormat(safeName)
	return Entry{
		Name:   safeName,
		Type:   fileType,
		Size:   written,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// ctxReader stops a copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// sanitizeFilename rejects absolute and escaping member paths. It returns the
// cleaned member path and its base name.
func sanitizeFilename(filename string) (string, string, error) {
	if path.IsAbs(filename) || filepath.IsAbs(filename) {
		return "", "", fmt.Errorf("absolute path not allowed: %s", filename)
	}
	if len(filename) >= 2 && filename[1] == ':' {
		return "", "", fmt.Errorf("drive letter not allowed: %s", filename)
	}

	cleaned := path.Clean(strings.ReplaceAll(filename, "\\", "/"))
	if strings.HasPrefix(cleaned, "/") {
		return "", "", fmt.Errorf("path traversal not allowed: %s", filename)
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", "", fmt.Errorf("path traversal not allowed: %s", filename)
		}
	}

	base := path.Base(cleaned)
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, ".") {
		return "", "", fmt.Errorf("invalid filename: %s", filename)
	}
	return cleaned, base, nil
}

func (o Options) shouldSkip(filename string) bool {
	for _, pattern := range o.SkipPatterns {
		if strings.Contains(filename, pattern) {
			return true
		}
	}
	return false
}

func (o Options) isAllowedExtension(filename string) bool {
	if len(o.AllowedExtensions) == 0 {
		return true
	}
	ext := filepath.Ext(filename)
	for _, allowed := range o.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
