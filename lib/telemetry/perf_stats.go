package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

const perfSampleInterval = time.Second * 30

var perfMeter = otel.Meter("upset.perf_stats")
var cpuGauge, _ = perfMeter.Float64Gauge("cpu_usage")
var memoryGauge, _ = perfMeter.Int64Gauge("allocated_mb")
var liveObjectsGauge, _ = perfMeter.Int64Gauge("live_objects")
var goroutineGauge, _ = perfMeter.Int64Gauge("goroutine_count")

// InstrumentPerfStats samples process health gauges in the background
// until ctx is cancelled.
func InstrumentPerfStats(ctx context.Context) {
	go samplePerfStats(ctx)
}

func samplePerfStats(ctx context.Context) {
	ticker := time.NewTicker(perfSampleInterval)
	defer ticker.Stop()

	var memStats runtime.MemStats
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		runtime.ReadMemStats(&memStats)
		memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
		liveObjectsGauge.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
		goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))

		usage, err := cpu.Percent(time.Minute, false)
		if err != nil {
			slog.Warn("failed to read cpu usage", "err", err)
			continue
		}
		cpuGauge.Record(ctx, usage[0])
	}
}
