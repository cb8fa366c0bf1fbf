package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// InstrumentPerfStats samples process stats every interval until ctx is done.
// A headless browser lives next to the daemon so cpu and memory are worth watching.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				cpuUsage, err := cpu.PercentWithContext(ctx, time.Second, false)
				if err == nil && len(cpuUsage) > 0 {
					cpuGauge.Record(ctx, cpuUsage[0])
				} else if err != nil {
					tel.ReportWarning("perf-stats.cpu", err)
				}

				allocatedMb := int64(memStats.Alloc / 1_000_000)
				memoryGauge.Record(ctx, allocatedMb)
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
				tel.ReportCount("perf-stats.allocated-mb", allocatedMb)
			case <-ctx.Done():
				return
			}
		}
	}()
}
