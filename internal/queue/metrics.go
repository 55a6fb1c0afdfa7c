package queue

import (
	"syslogsrv/internal/metrics"
	"time"
)

func (queue *MessageQueue) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	appended := queue.Metrics.Appended.Swap(0)
	dropped := queue.Metrics.Dropped.Swap(0)
	drained := queue.Metrics.Drained.Swap(0)
	requeued := queue.Metrics.Requeued.Swap(0)
	drains := queue.Metrics.Drains.Swap(0)

	depth := queue.Len()
	size := queue.Bytes()
	pressure := queue.MemoryPressure()

	recordTime := time.Now()

	add := func(name string, raw any, unit string, metricType metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Type:        metricType,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("depth", depth, "count", metrics.Gauge, "Current number of messages waiting for the writer")
	add("byte_sum", size, "bytes", metrics.Gauge, "Byte sum of all queued messages")
	add("memory_pressure", pressure*100, "%", metrics.Gauge, "Queued bytes relative to free system memory")
	add("appended_total", appended, "count", metrics.Counter, "Messages accepted in the interval")
	add("dropped_total", dropped, "count", metrics.Counter, "Messages rejected by the queue byte bound in the interval")
	add("drained_total", drained, "count", metrics.Counter, "Messages handed to the writer in the interval")
	add("requeued_total", requeued, "count", metrics.Counter, "Messages returned to the queue after a failed flush in the interval")
	add("drains_total", drains, "count", metrics.Counter, "Drain calls in the interval")
	return
}
