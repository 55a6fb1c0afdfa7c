// Gathers component metrics into the central registry
package gatherer

import (
	"context"
	"runtime/debug"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/metrics"
	"time"
)

// Queue size relative to free memory that triggers a warning
const pressureWarnRatio float64 = 0.5

// Ticks between retention prunes
const pruneEveryTicks int = 30

func New(interval time.Duration, retention time.Duration, sources ...Source) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Interval:  interval,
		Retention: retention,
		Sources:   sources,
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	lastRun := time.Now()

	// Poll at half the record interval
	ticker := time.NewTicker(gatherer.Interval / 2)
	defer ticker.Stop()

	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)
				lastRun = now
				gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)
			}

			tickCount++
			if tickCount >= pruneEveryTicks {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Reads every source into one time slice
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector thread: %v\n%s", fatalError, stack)
		}
	}()

	var collection []metrics.Metric
	for _, source := range gatherer.Sources {
		collection = append(collection, source.CollectMetrics(interval)...)
	}
	gatherer.Registry.Add(timeSlice, collection)

	if gatherer.Pressure != nil {
		ratio := gatherer.Pressure()
		if ratio > pressureWarnRatio {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Queued messages use %.0f%% of free memory, the writer is not keeping up\n", ratio*100)
		}
	}
}
