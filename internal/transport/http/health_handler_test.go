package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/config"
	"salescli/internal/services"
)

type staticCounter int

func (c staticCounter) ClientCount() int { return int(c) }

func newHealthRouter(t *testing.T) (chi.Router, *services.TerritoryService) {
	t.Helper()
	dir := t.TempDir()
	paths := &config.Paths{
		ExecutableDir: dir,
		DataDir:       dir,
		LogsDir:       dir,
	}

	territory, _ := newTestTerritory(t)
	svc := services.NewHealthService("1.2.0", "", paths, territory, staticCounter(3), testLogger())
	handler := NewHealthHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/healthz", handler.HealthCheck)
	r.Get("/healthz/live", handler.LivenessCheck)
	r.Get("/healthz/ready", handler.ReadinessCheck)
	r.Get("/api/version", handler.Version)
	r.Get("/api/stats", handler.Stats)
	return r, territory
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	router, _ := newHealthRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.0", body["version"])
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	router, _ := newHealthRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/healthz/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "alive", body["status"])
	assert.Contains(t, body["runtime"], "goroutines")
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	router, _ := newHealthRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "ready", body["status"])

	services := body["services"].(map[string]interface{})
	assert.Contains(t, services, "storage")
	assert.Contains(t, services, "dataset")
}

func TestHealthHandler_ReadinessCheckNotReady(t *testing.T) {
	territory, _ := newTestTerritory(t)
	paths := &config.Paths{DataDir: "/nonexistent/data/dir"}
	svc := services.NewHealthService("1.2.0", "", paths, territory, nil, testLogger())
	handler := NewHealthHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/healthz/ready", handler.ReadinessCheck)

	rec := doRequest(r, httptest.NewRequest(http.MethodGet, "/healthz/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "not_ready", body["status"])
}

func TestHealthHandler_Version(t *testing.T) {
	router, _ := newHealthRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "1.2.0", body["version"])
	assert.Contains(t, body, "go_version")
	assert.NotContains(t, body, "build_time")
}

func TestHealthHandler_Stats(t *testing.T) {
	router, territory := newHealthRouter(t)
	loadSample(t, territory)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["dataset_loaded"])
	assert.Equal(t, float64(2), body["customer_count"])
	assert.Equal(t, float64(3), body["websocket_clients"])
	assert.Equal(t, float64(1), body["dataset_version"])
}
