package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestSystemMetricsCollect(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	collector, err := NewSystemMetricsCollector(mp.Meter(MeterName), time.Minute, CollectorSources{
		WebSocketClients: func() int { return 3 },
		DatasetCustomers: func() int { return 42 },
	})
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)

	assert.Greater(t, stats.Goroutines, int64(0))
	assert.Greater(t, stats.HeapAlloc, int64(0))
	assert.Equal(t, int64(3), stats.WebSocketClients)
	assert.Equal(t, int64(42), stats.DatasetCustomers)
	assert.False(t, stats.Timestamp.IsZero())
}

func TestSystemMetricsCollect_NilSources(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	collector, err := NewSystemMetricsCollector(mp.Meter(MeterName), time.Minute, CollectorSources{})
	require.NoError(t, err)

	stats := collector.GetCurrentStats(context.Background())
	require.NotNil(t, stats)
	assert.Equal(t, int64(0), stats.WebSocketClients)
	assert.Equal(t, int64(0), stats.DatasetCustomers)
}

func TestSystemMetricsCollectorStartReturns(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	collector, err := NewSystemMetricsCollector(mp.Meter(MeterName), time.Minute, CollectorSources{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return; collection must run in the background")
	}

	collector.Stop()
}
