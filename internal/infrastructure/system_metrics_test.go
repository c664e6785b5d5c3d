package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeterProviders(t *testing.T) *OTelProviders {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })
	return providers
}

func TestRuntimeMetricsObserve(t *testing.T) {
	providers := testMeterProviders(t)

	metrics, err := NewRuntimeMetrics(providers.Meter)
	require.NoError(t, err)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	numGC := metrics.Observe(context.Background(), time.Now(), 0)
	assert.GreaterOrEqual(t, numGC, ms.NumGC)

	// A second sample carries the previous GC count forward.
	again := metrics.Observe(context.Background(), time.Now(), numGC)
	assert.GreaterOrEqual(t, again, numGC)
}

func TestSystemMetricsCollectorStartStop(t *testing.T) {
	providers := testMeterProviders(t)

	collector, err := NewSystemMetricsCollector(providers.Meter, 10*time.Millisecond)
	require.NoError(t, err)

	// Start must return immediately; the loop runs in the background.
	done := make(chan struct{})
	go func() {
		collector.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return")
	}

	time.Sleep(30 * time.Millisecond)
	collector.Stop()
	collector.Stop()
}
