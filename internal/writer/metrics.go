package writer

import (
	"syslogsrv/internal/metrics"
	"time"
)

func (writer *BatchWriter) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	flushes := writer.Metrics.Flushes.Swap(0)
	emptyTicks := writer.Metrics.EmptyTicks.Swap(0)
	lines := writer.Metrics.Lines.Swap(0)
	size := writer.Metrics.Bytes.Swap(0)
	failures := writer.Metrics.Failures.Swap(0)
	filesCreated := writer.Metrics.FilesCreated.Swap(0)
	mirrorSent := writer.Metrics.MirrorSent.Swap(0)
	mirrorFailures := writer.Metrics.MirrorFailures.Swap(0)
	lastFlushNs := writer.Metrics.LastFlushNs.Load()

	recordTime := time.Now()

	add := func(name string, raw any, unit string, metricType metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   writer.Namespace,
			Type:        metricType,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("flushes_total", flushes, "count", metrics.Counter, "Flushes that wrote lines in the interval")
	add("empty_ticks_total", emptyTicks, "count", metrics.Counter, "Eligible flushes with an empty queue in the interval")
	add("lines_written_total", lines, "count", metrics.Counter, "Lines appended to log files in the interval")
	add("bytes_written_total", size, "bytes", metrics.Counter, "Bytes appended to log files in the interval")
	add("failures_total", failures, "count", metrics.Counter, "Failed file writes in the interval")
	add("files_created_total", filesCreated, "count", metrics.Counter, "New log files created in the interval")
	add("last_flush_duration_ns", lastFlushNs, "ns", metrics.Gauge, "Duration of the most recent flush")
	add("mirror_sent_total", mirrorSent, "count", metrics.Counter, "Lines accepted by mirrors in the interval")
	add("mirror_failures_total", mirrorFailures, "count", metrics.Counter, "Failed mirror sends in the interval")
	return
}
