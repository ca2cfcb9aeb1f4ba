package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/feed"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/middleware"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/pipeline"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/storage"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/suppliers"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/tables"
	"github.com/kemuriCode/Multi-Wholesale-Integration-sub000/internal/types"
)

const apiKey = "test-key"

type testServer struct {
	router *gin.Engine
	runner *pipeline.Runner
	store  storage.KeyValueStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tb, err := tables.Default()
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	root := t.TempDir()
	inDir := filepath.Join(root, "in", "demo")
	require.NoError(t, os.MkdirAll(inDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "products.xml"), []byte(
		`<products><product><itemNumber>X1</itemNumber><name>Kubek</name></product></products>`), 0644))

	registry := suppliers.NewRegistry()
	registry.Register(suppliers.Profile{
		ID:   "demo",
		Name: "Demo",
		Dir:  "demo",
		Feeds: []feed.Spec{
			{Kind: types.FeedProducts, Path: "products.xml", Element: "product", KeyFields: []string{"itemNumber"}, Mode: types.CollectSingle, Required: true},
		},
		OutputFile: "demo.xml",
	})

	runner := pipeline.NewRunner(pipeline.Options{
		InputDir:            filepath.Join(root, "in"),
		OutputDir:           filepath.Join(root, "out"),
		Tables:              tb,
		Store:               store,
		Logger:              zerolog.Nop(),
		DefaultRegularPrice: decimal.RequireFromString("50.00"),
		DefaultCategory:     "Inne",
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(context.Background(), runner, registry, store, zerolog.Nop()).
		Register(router, middleware.InternalAuthMiddleware(apiKey))

	return &testServer{router: router, runner: runner, store: store}
}

func (s *testServer) do(method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", false)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "not configured", resp.Database)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/metrics", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInternalRoutesRequireKey(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/internal/suppliers", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListSuppliers(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/internal/suppliers", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Suppliers []SupplierInfo `json:"suppliers"`
		Total     int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "demo", resp.Suppliers[0].ID)
	assert.Equal(t, []types.FeedKind{types.FeedProducts}, resp.Suppliers[0].Feeds)
	assert.False(t, resp.Suppliers[0].Running)
}

func TestBuildAndStatus(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/internal/suppliers/demo/status", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/internal/suppliers/demo/build", true)
	require.Equal(t, http.StatusAccepted, w.Code)

	var started BuildStartedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.NotEmpty(t, started.RunID)
	assert.Equal(t, "/internal/suppliers/demo/status", started.PollURL)

	require.Eventually(t, func() bool {
		_, busy := s.runner.InProgress("demo")
		return !busy
	}, 10*time.Second, 10*time.Millisecond)

	w = s.do(http.MethodGet, "/internal/suppliers/demo/status", true)
	require.Equal(t, http.StatusOK, w.Code)

	var result types.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, started.RunID, result.RunID)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Counts.Simple)

	w = s.do(http.MethodGet, "/internal/runs?status=completed", true)
	require.Equal(t, http.StatusOK, w.Code)
	var runs ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	assert.Equal(t, 1, runs.Total)
}

func TestBuildUnknownSupplier(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/internal/suppliers/nope/build", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/internal/suppliers/nope/status", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type busyRunner struct{ runID string }

func (b busyRunner) Start(context.Context, *suppliers.Profile) (string, error) {
	return "", pipeline.ErrRunInProgress
}

func (b busyRunner) InProgress(suppliers.SupplierID) (string, bool) {
	return b.runID, true
}

func TestBuildConflictWhileRunning(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	registry := suppliers.NewRegistry()
	registry.Register(suppliers.Profile{ID: "demo", Name: "Demo"})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(context.Background(), busyRunner{runID: "run-1"}, registry, store, zerolog.Nop()).Register(router)

	req := httptest.NewRequest(http.MethodPost, "/internal/suppliers/demo/build", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["runId"])

	req = httptest.NewRequest(http.MethodGet, "/internal/suppliers", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"running":true`)
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/internal/runs?limit=1000", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
