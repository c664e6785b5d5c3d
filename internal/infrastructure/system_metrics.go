package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics covers the Go runtime signals the service dashboards
// chart next to the pipeline and model metrics. Feature builds and
// exact attribution are the memory- and CPU-heavy paths, so heap and
// GC behaviour is what operators actually watch here.
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcRuns     metric.Int64Counter
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewRuntimeMetrics registers the runtime instruments on the meter.
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of live goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	heapSys, err := meter.Int64Gauge(
		"runtime_heap_sys_bytes",
		metric.WithDescription("Bytes of heap memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcRuns, err := meter.Int64Counter(
		"runtime_gc_runs_total",
		metric.WithDescription("Total number of completed GC cycles"),
	)
	if err != nil {
		return nil, err
	}

	gcPause, err := meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Stop-the-world pause of the most recent GC cycle"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		heapSys:    heapSys,
		gcRuns:     gcRuns,
		gcPause:    gcPause,
		uptime:     uptime,
	}, nil
}

// Observe takes one runtime sample and records it. The GC counter in
// MemStats is cumulative, so the caller passes the count seen at the
// previous sample and gets back the current one.
func (m *RuntimeMetrics) Observe(ctx context.Context, startTime time.Time, lastGC uint32) uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	m.heapAlloc.Record(ctx, int64(ms.HeapAlloc))
	m.heapSys.Record(ctx, int64(ms.HeapSys))
	m.uptime.Record(ctx, time.Since(startTime).Seconds())

	if ms.NumGC > lastGC {
		m.gcRuns.Add(ctx, int64(ms.NumGC-lastGC))
		pause := time.Duration(ms.PauseNs[(ms.NumGC+255)%256])
		m.gcPause.Record(ctx, pause.Seconds())
	}
	return ms.NumGC
}

// SystemMetricsCollector samples the runtime on a fixed interval for
// the life of the process.
type SystemMetricsCollector struct {
	metrics   *RuntimeMetrics
	startTime time.Time
	interval  time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSystemMetricsCollector registers the runtime instruments and
// prepares a collector that samples them every interval.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	metrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	return &SystemMetricsCollector{
		metrics:   metrics,
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start launches the sampling loop and returns immediately. The loop
// runs until Stop is called or ctx is cancelled.
func (c *SystemMetricsCollector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *SystemMetricsCollector) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	lastGC := c.metrics.Observe(ctx, c.startTime, 0)
	for {
		select {
		case <-ticker.C:
			lastGC = c.metrics.Observe(ctx, c.startTime, lastGC)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the sampling loop. Safe to call more than once.
func (c *SystemMetricsCollector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
