package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/config"
	"salescli/internal/dataprocessing"
)

type stubClientCounter int

func (s stubClientCounter) ClientCount() int { return int(s) }

func newHealthFixture(t *testing.T) (*HealthService, *TerritoryService) {
	t.Helper()
	base := t.TempDir()
	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       base,
		LogsDir:       filepath.Join(base, "logs"),
	}
	territory := NewTerritoryService(dataprocessing.NewParser(testLogger()), nil, nil, nil, testLogger())
	return NewHealthService("1.0.0", "", paths, territory, stubClientCounter(3), testLogger()), territory
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs, _ := newHealthFixture(t)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_Readiness(t *testing.T) {
	hs, territory := newHealthFixture(t)
	ctx := context.Background()

	status := hs.ReadinessCheck(ctx)
	assert.Equal(t, "ready", status.Status)
	storage := status.Services["storage"].(ServiceHealth)
	assert.Equal(t, "ready", storage.Status)

	// An empty dataset does not block readiness.
	dataset := status.Services["dataset"].(ServiceHealth)
	assert.Equal(t, "ready", dataset.Status)
	assert.Equal(t, "no dataset loaded", dataset.Message)

	_, err := territory.Load(ctx, sampleCSV)
	require.NoError(t, err)

	dataset = hs.ReadinessCheck(ctx).Services["dataset"].(ServiceHealth)
	assert.Equal(t, "dataset loaded", dataset.Message)
}

func TestHealthService_ReadinessMissingDataDir(t *testing.T) {
	territory := NewTerritoryService(dataprocessing.NewParser(testLogger()), nil, nil, nil, testLogger())
	paths := &config.Paths{DataDir: filepath.Join(t.TempDir(), "does-not-exist")}
	hs := NewHealthService("1.0.0", "", paths, territory, nil, testLogger())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
}

func TestHealthService_SystemStats(t *testing.T) {
	hs, territory := newHealthFixture(t)
	ctx := context.Background()

	_, err := territory.Load(ctx, sampleCSV)
	require.NoError(t, err)

	stats := hs.SystemStats(ctx)
	assert.True(t, stats.DatasetLoaded)
	assert.Equal(t, uint64(1), stats.DatasetVersion)
	assert.Equal(t, 2, stats.CustomerCount)
	assert.Equal(t, 3, stats.WebSocketClients)
	assert.NotEmpty(t, stats.GoVersion)
}

func TestHealthService_Version(t *testing.T) {
	hs, _ := newHealthFixture(t)

	info := hs.Version()
	assert.Equal(t, "1.0.0", info["version"])
	assert.NotContains(t, info, "build_time")
}
