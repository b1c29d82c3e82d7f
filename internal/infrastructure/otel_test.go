package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_UnsupportedExporters(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		TraceExporter:  "jaeger",
		EnableTracing:  true,
	}
	_, err := InitializeOTel(cfg, testLogger())
	assert.Error(t, err)

	cfg = &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		TraceExporter:  "none",
		MetricExporter: "statsd",
		EnableMetrics:  true,
	}
	_, err = InitializeOTel(cfg, testLogger())
	assert.Error(t, err)
}

func TestCreateBusinessMetrics(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := CreateBusinessMetrics(mp.Meter(MeterName))
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.DatasetLoadsTotal)
	assert.NotNil(t, metrics.DatasetLoadDuration)
	assert.NotNil(t, metrics.SnapshotSaves)
	assert.NotNil(t, metrics.SearchQueries)
}

func TestRecordLoadMetrics(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := CreateBusinessMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	// No panic on either path; nil metrics is a no-op.
	RecordLoadMetrics(context.Background(), metrics, "upload", 120*time.Millisecond, 10, 4, 1, nil)
	RecordLoadMetrics(context.Background(), metrics, "upload", time.Millisecond, 0, 0, 0, assert.AnError)
	RecordLoadMetrics(context.Background(), nil, "upload", time.Millisecond, 0, 0, 0, nil)
}

func TestDefaultOTelConfig(t *testing.T) {
	cfg := DefaultOTelConfig()

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.True(t, cfg.EnableMetrics)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, 1.0, cfg.SampleRatio)
}
