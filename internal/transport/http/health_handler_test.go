package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrpulse/internal/services"
)

func newHealthHandler(t *testing.T, dataDir string) *HealthHandler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewHealthServiceWithBuildInfo("v9.9.9", "https://example.com/repo", "2024-06-01", "abc123", dataDir, logger)
	return NewHealthHandler(svc, logger)
}

func TestHealthCheckHandler(t *testing.T) {
	h := newHealthHandler(t, t.TempDir())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "v9.9.9", status.Version)
}

func TestReadinessCheckHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.csv"), []byte("id\n"), 0644))
	h := newHealthHandler(t, dir)

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
}

func TestLivenessCheckHandler(t *testing.T) {
	h := newHealthHandler(t, t.TempDir())

	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

func TestVersionHandler(t *testing.T) {
	h := newHealthHandler(t, t.TempDir())

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "v9.9.9", info["version"])
	assert.Equal(t, "abc123", info["build_id"])
}

func TestSystemStatsHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.csv"), []byte("id\nE1\n"), 0644))
	h := newHealthHandler(t, dir)

	rec := httptest.NewRecorder()
	h.SystemStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats services.SystemStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalFiles)
}
