package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sharedAppOnce sync.Once
	sharedApp     *Application
	sharedAppErr  error
)

// testApplication builds a single shared Application for the package.
// OpenTelemetry registers Prometheus collectors globally, so the
// application can only be constructed once per test process.
func testApplication(t *testing.T) *Application {
	t.Helper()

	sharedAppOnce.Do(func() {
		tempDir, err := os.MkdirTemp("", "app_test_*")
		if err != nil {
			sharedAppErr = err
			return
		}
		os.Args = []string{filepath.Join(tempDir, "territory-server")}

		os.Setenv("TERRITORY_SERVER_PORT", "8099")
		os.Setenv("TERRITORY_LOGGING_LEVEL", "error")
		os.Setenv("TERRITORY_LOGGING_OUTPUT", "console")
		os.Setenv("TERRITORY_SECURITY_RATE_LIMIT_ENABLED", "false")

		sharedApp, sharedAppErr = NewApplication()
	})

	require.NoError(t, sharedAppErr)
	require.NotNil(t, sharedApp)
	return sharedApp
}

func TestNewApplication(t *testing.T) {
	app := testApplication(t)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Paths)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.WebSocketHub)
	assert.NotNil(t, app.SnapshotStore)
	assert.NotNil(t, app.TerritoryService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.OTelProviders)
	assert.NotNil(t, app.BusinessMetrics)
}

func TestApplication_RouterEndpoints(t *testing.T) {
	app := testApplication(t)

	server := httptest.NewServer(app.Router)
	defer server.Close()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "health endpoint",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "liveness endpoint",
			method:         http.MethodGet,
			path:           "/healthz/live",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "version endpoint",
			method:         http.MethodGet,
			path:           "/api/version",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "stats endpoint",
			method:         http.MethodGet,
			path:           "/api/stats",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "dataset status endpoint",
			method:         http.MethodGet,
			path:           "/api/territory/status",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "customers endpoint",
			method:         http.MethodGet,
			path:           "/api/customers",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics endpoint",
			method:         http.MethodGet,
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/unknown",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestApplication_handleWebSocket(t *testing.T) {
	app := testApplication(t)

	server := httptest.NewServer(http.HandlerFunc(app.handleWebSocket))
	defer server.Close()

	t.Run("successful upgrade receives greeting", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, message, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(message), `"type":"connection"`)
	})

	t.Run("disallowed origin is rejected", func(t *testing.T) {
		wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

		header := http.Header{}
		header.Set("Origin", "http://evil.example.com")

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
		if conn != nil {
			conn.Close()
		}
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("plain HTTP request fails the upgrade", func(t *testing.T) {
		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestApplication_getCORSConfig(t *testing.T) {
	app := testApplication(t)

	config := app.getCORSConfig()
	assert.Equal(t, app.Config.Security.AllowedOrigins, config.AllowedOrigins)
	assert.Contains(t, config.AllowedMethods, "GET")
	assert.Contains(t, config.AllowedMethods, "POST")
	assert.Contains(t, config.AllowedHeaders, "Content-Type")
	assert.True(t, config.AllowCredentials)
	assert.Equal(t, 300, config.MaxAge)
}

func TestApplication_createServer(t *testing.T) {
	app := testApplication(t)

	assert.Equal(t, fmt.Sprintf(":%d", app.Config.Server.Port), app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, app.Config.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, app.Config.Server.IdleTimeout, app.Server.IdleTimeout)
}
