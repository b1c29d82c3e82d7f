package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// CollectorSources supplies the application-level readings sampled alongside
// the Go runtime stats. Nil funcs are skipped.
type CollectorSources struct {
	WebSocketClients func() int
	DatasetCustomers func() int
}

// SystemMetrics records process and service gauges on each collection cycle
type SystemMetrics struct {
	goroutines    metric.Int64Gauge
	heapAlloc     metric.Int64Gauge
	totalAlloc    metric.Int64Gauge
	sysBytes      metric.Int64Gauge
	gcPause       metric.Float64Histogram
	uptime        metric.Float64Gauge
	wsClients     metric.Int64Gauge
	datasetLoaded metric.Int64Gauge
}

// NewSystemMetrics registers the process gauges on the given meter
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"process_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"process_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"process_total_alloc_bytes",
		metric.WithDescription("Cumulative bytes allocated for heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	sysBytes, err := meter.Int64Gauge(
		"process_sys_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"process_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	wsClients, err := meter.Int64Gauge(
		"websocket_connected_clients",
		metric.WithDescription("Currently connected WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	datasetLoaded, err := meter.Int64Gauge(
		"dataset_loaded_customers",
		metric.WithDescription("Customers in the loaded territory dataset"),
	)
	if err != nil {
		return nil, err
	}

	return &SystemMetrics{
		goroutines:    goroutines,
		heapAlloc:     heapAlloc,
		totalAlloc:    totalAlloc,
		sysBytes:      sysBytes,
		gcPause:       gcPause,
		uptime:        uptime,
		wsClients:     wsClients,
		datasetLoaded: datasetLoaded,
	}, nil
}

// SystemStats holds one collection cycle's readings
type SystemStats struct {
	Goroutines       int64
	HeapAlloc        int64
	TotalAlloc       int64
	Sys              int64
	GCCount          uint32
	LastGCPause      time.Duration
	Uptime           time.Duration
	WebSocketClients int64
	DatasetCustomers int64
	Timestamp        time.Time
}

// Collect samples the runtime and the configured sources, records the
// gauges, and returns the readings
func (sm *SystemMetrics) Collect(ctx context.Context, startTime time.Time, sources CollectorSources) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &SystemStats{
		Goroutines:  int64(runtime.NumGoroutine()),
		HeapAlloc:   int64(memStats.Alloc),
		TotalAlloc:  int64(memStats.TotalAlloc),
		Sys:         int64(memStats.Sys),
		GCCount:     memStats.NumGC,
		LastGCPause: time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Uptime:      time.Since(startTime),
		Timestamp:   time.Now(),
	}
	if sources.WebSocketClients != nil {
		stats.WebSocketClients = int64(sources.WebSocketClients())
	}
	if sources.DatasetCustomers != nil {
		stats.DatasetCustomers = int64(sources.DatasetCustomers())
	}

	sm.goroutines.Record(ctx, stats.Goroutines)
	sm.heapAlloc.Record(ctx, stats.HeapAlloc)
	sm.totalAlloc.Record(ctx, stats.TotalAlloc)
	sm.sysBytes.Record(ctx, stats.Sys)
	sm.uptime.Record(ctx, stats.Uptime.Seconds())
	sm.wsClients.Record(ctx, stats.WebSocketClients)
	sm.datasetLoaded.Record(ctx, stats.DatasetCustomers)

	if stats.LastGCPause > 0 {
		sm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}

	return stats
}

// SystemMetricsCollector runs periodic collection in the background
type SystemMetricsCollector struct {
	metrics   *SystemMetrics
	sources   CollectorSources
	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSystemMetricsCollector creates a collector sampling at the given interval
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration, sources CollectorSources) (*SystemMetricsCollector, error) {
	metrics, err := NewSystemMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create system metrics: %w", err)
	}

	return &SystemMetricsCollector{
		metrics:   metrics,
		sources:   sources,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start launches the collection loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (smc *SystemMetricsCollector) Start(ctx context.Context) {
	go smc.run(ctx)
}

func (smc *SystemMetricsCollector) run(ctx context.Context) {
	ticker := time.NewTicker(smc.interval)
	defer ticker.Stop()

	smc.metrics.Collect(ctx, smc.startTime, smc.sources)

	for {
		select {
		case <-ticker.C:
			smc.metrics.Collect(ctx, smc.startTime, smc.sources)
		case <-smc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collection
func (smc *SystemMetricsCollector) Stop() {
	close(smc.stopCh)
}

// GetCurrentStats collects and returns the current readings
func (smc *SystemMetricsCollector) GetCurrentStats(ctx context.Context) *SystemStats {
	return smc.metrics.Collect(ctx, smc.startTime, smc.sources)
}
