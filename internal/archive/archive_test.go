package archive

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

type member struct {
	name string
	body string
}

func writeZip(t *testing.T, members map[string]string) string {
	t.Helper()
	ordered := make([]member, 0, len(members))
	for name, body := range members {
		ordered = append(ordered, member{name, body})
	}
	return writeOrderedZip(t, ordered)
}

// writeOrderedZip keeps the member order, which matters when names collide
func writeOrderedZip(t *testing.T, members []member) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "feeds.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(m.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestExpand(t *testing.T) {
	src := writeZip(t, map[string]string{
		"export/products.xml":   "<products/>",
		"prices.csv":            "sku;price\n",
		"__MACOSX/products.xml": "junk",
		"readme.pdf":            "%PDF",
		"../../escape.xml":      "<x/>",
	})
	dest := t.TempDir()

	entries, err := Expand(context.Background(), src, dest, DefaultOptions())
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		assert.Len(t, e.SHA256, 64)
	}
	assert.ElementsMatch(t, []string{"products.xml", "prices.csv"}, names)

	data, err := os.ReadFile(filepath.Join(dest, "products.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<products/>", string(data))

	_, err = os.Stat(filepath.Join(dest, "readme.pdf"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(filepath.Dir(dest), "escape.xml"))
	assert.True(t, os.IsNotExist(err))

	leftovers, err := filepath.Glob(filepath.Join(dest, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestExpandDuplicateNamesKeepFirst(t *testing.T) {
	for _, order := range [][]member{
		{
			{"export/products.xml", "<products/>"},
			{"__MACOSX/products.xml", "junk"},
			{"other/products.xml", "<other/>"},
		},
		{
			{"__MACOSX/products.xml", "junk"},
			{"export/products.xml", "<products/>"},
			{"other/products.xml", "<other/>"},
		},
	} {
		dest := t.TempDir()
		entries, err := Expand(context.Background(), writeOrderedZip(t, order), dest, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "products.xml", entries[0].Name)

		data, err := os.ReadFile(filepath.Join(dest, "products.xml"))
		require.NoError(t, err)
		assert.Equal(t, "<products/>", string(data))
	}
}

func TestExpandSkipsByDirectory(t *testing.T) {
	src := writeOrderedZip(t, []member{
		{"__MACOSX/prices.csv", "junk"},
		{"docs/Thumbs.db/stock.json", "[]"},
	})
	entries, err := Expand(context.Background(), src, t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExpandDetectsFileType(t *testing.T) {
	src := writeZip(t, map[string]string{"stock.json": "[]"})
	entries, err := Expand(context.Background(), src, t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, types.FileTypeJSON, entries[0].Type)
	assert.Equal(t, int64(2), entries[0].Size)
}

func TestExpandMissingArchive(t *testing.T) {
	_, err := Expand(context.Background(), filepath.Join(t.TempDir(), "nope.zip"), t.TempDir(), DefaultOptions())
	assert.True(t, errors.Is(err, types.ErrSourceNotFound))
}

func TestExpandNotAZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(p, []byte("not a zip"), 0644))
	_, err := Expand(context.Background(), p, t.TempDir(), DefaultOptions())
	assert.True(t, errors.Is(err, types.ErrSourceUnreadable))
}

func TestExpandLimits(t *testing.T) {
	src := writeZip(t, map[string]string{
		"a.xml": strings.Repeat("x", 100),
		"b.xml": strings.Repeat("y", 100),
	})

	t.Run("file size", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxFileSize = 10
		_, err := Expand(context.Background(), src, t.TempDir(), opts)
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("total size", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxTotalSize = 150
		_, err := Expand(context.Background(), src, t.TempDir(), opts)
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("file count", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxFiles = 1
		_, err := Expand(context.Background(), src, t.TempDir(), opts)
		assert.True(t, errors.Is(err, ErrTooManyFiles))
	})
}

func TestExpandCancelled(t *testing.T) {
	src := writeZip(t, map[string]string{"a.xml": "<a/>"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Expand(ctx, src, t.TempDir(), DefaultOptions())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantPath string
		want     string
		wantErr  bool
	}{
		{"plain", "products.xml", "products.xml", "products.xml", false},
		{"nested", "a/b/products.xml", "a/b/products.xml", "products.xml", false},
		{"backslashes", `dir\products.xml`, "dir/products.xml", "products.xml", false},
		{"dot segments", "a/./b//products.xml", "a/b/products.xml", "products.xml", false},
		{"absolute", "/etc/passwd", "", "", true},
		{"traversal", "../products.xml", "", "", true},
		{"drive letter", "C:products.xml", "", "", true},
		{"hidden", "dir/.env", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPath, got, err := sanitizeFilename(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.want, got)
		})
	}
}
