package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	svc := NewHealthService("v1.2.3", "https://example.com/repo", t.TempDir(), testLogger())

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "v1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready with employee roster", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.csv"), []byte("id\n"), 0644))

		svc := NewHealthService("v1", "", dir, testLogger())
		status := svc.ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)

		data, ok := status.Services["data"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "ready", data.Status)
	})

	t.Run("not ready without roster", func(t *testing.T) {
		svc := NewHealthService("v1", "", t.TempDir(), testLogger())
		status := svc.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
	})

	t.Run("not ready without data directory", func(t *testing.T) {
		svc := NewHealthService("v1", "", filepath.Join(t.TempDir(), "missing"), testLogger())
		status := svc.ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
	})
}

func TestLivenessCheck(t *testing.T) {
	svc := NewHealthService("v1", "", t.TempDir(), testLogger())

	status := svc.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestVersionInfo(t *testing.T) {
	svc := NewHealthServiceWithBuildInfo("v2.0.0", "https://example.com/repo", "2024-01-01", "abc123def456", t.TempDir(), testLogger())

	info := svc.Version()
	assert.Equal(t, "v2.0.0", info["version"])
	assert.Equal(t, "https://example.com/repo", info["repo_url"])
	assert.Equal(t, "2024-01-01", info["build_time"])
	assert.Equal(t, "abc123def456", info["build_id"])
}

func TestVersionOmitsEmptyBuildInfo(t *testing.T) {
	svc := NewHealthService("v1", "", t.TempDir(), testLogger())

	info := svc.Version()
	assert.NotContains(t, info, "build_time")
	assert.NotContains(t, info, "build_id")
}

func TestSystemStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "employees.csv"), []byte("id,name\nE1,A\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leaves.csv"), []byte("employee_id\n"), 0644))

	svc := NewHealthService("v1", "", dir, testLogger())
	stats, err := svc.SystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Greater(t, stats.TotalSizeBytes, int64(0))
	assert.NotEmpty(t, stats.GoVersion)
}
