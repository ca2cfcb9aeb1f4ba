package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every KeyValueStore must share
func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, RunKey("anda"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, RunKey("anda"), []byte(`{"a":1}`)))
	require.NoError(t, s.Set(ctx, RunKey("axpol"), []byte(`{"b":2}`)))
	require.NoError(t, s.Set(ctx, "other", []byte("x")))

	got, err := s.Get(ctx, RunKey("anda"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Set(ctx, RunKey("anda"), []byte(`{"a":2}`)))
	got, err = s.Get(ctx, RunKey("anda"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	keys, err := s.List(ctx, RunKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"run:anda:last", "run:axpol:last"}, keys)

	require.NoError(t, s.Delete(ctx, RunKey("anda")))
	require.NoError(t, s.Delete(ctx, RunKey("anda")))
	_, err = s.Get(ctx, RunKey("anda"))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Set(ctx, "", []byte("x")))
}

func TestLocalStore(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestLocalStoreKeysStayInBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStore(base)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "../../escape", []byte("x")))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(base), "escape"))
	assert.True(t, os.IsNotExist(err))

	keys, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"../../escape"}, keys)
}

func TestLocalStoreConcurrentSet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, RunKey("par"), []byte("v")))
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, RunKey("par"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSupplierFromRunKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"run:anda:last", "anda", true},
		{"run::last", "", false},
		{"run:anda", "", false},
		{"run:anda:first", "", false},
		{"other", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := SupplierFromRunKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
