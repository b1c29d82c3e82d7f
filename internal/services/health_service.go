package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"salescli/internal/config"
)

// ClientCounter reports the number of connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService answers liveness and readiness probes for the territory
// server.
type HealthService struct {
	version   string
	buildTime string
	paths     *config.Paths
	territory *TerritoryService
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the probe response envelope.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth is the readiness state of one subsystem.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SystemStats summarizes the running process for the diagnostics endpoint.
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	DatasetLoaded    bool    `json:"dataset_loaded"`
	DatasetVersion   uint64  `json:"dataset_version"`
	CustomerCount    int     `json:"customer_count"`
	WebSocketClients int     `json:"websocket_clients"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService constructs a health service. Hub may be nil when the
// WebSocket layer is disabled.
func NewHealthService(version, buildTime string, paths *config.Paths, territory *TerritoryService, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		paths:     paths,
		territory: territory,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// LivenessCheck reports process liveness with runtime details.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck verifies the subsystems a request depends on.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["storage"] = hs.checkStorageHealth()
	status.Services["dataset"] = hs.checkDatasetHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// Version returns build and runtime information.
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}

// SystemStats returns process and dataset statistics.
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		DatasetLoaded:  hs.territory.Loaded(),
		DatasetVersion: hs.territory.Version(),
		CustomerCount:  len(hs.territory.Customers()),
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	return stats
}

// checkStorageHealth verifies the data directory exists and is writable.
func (hs *HealthService) checkStorageHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}
	if _, err := os.Stat(hs.paths.DataDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("data directory not found: %s", hs.paths.DataDir),
		}
	}

	probe, err := os.CreateTemp(hs.paths.DataDir, ".health-*")
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("data directory not writable: %v", err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return ServiceHealth{Status: "ready", Message: "storage is healthy"}
}

// checkDatasetHealth reports the dataset state. An empty collection is still
// ready; the server serves "not loaded" responses without it.
func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.territory.Loading() {
		return ServiceHealth{Status: "ready", Message: "load in progress"}
	}
	if err := hs.territory.LastError(); err != nil {
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("last load failed: %v", err),
		}
	}
	if !hs.territory.Loaded() {
		return ServiceHealth{Status: "ready", Message: "no dataset loaded"}
	}
	return ServiceHealth{Status: "ready", Message: "dataset loaded"}
}
