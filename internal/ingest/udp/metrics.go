package udp

import (
	"syslogsrv/internal/metrics"
	"time"
)

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	datagrams := instance.Metrics.Datagrams.Swap(0)
	size := instance.Metrics.Bytes.Swap(0)
	dropped := instance.Metrics.Dropped.Swap(0)
	panics := instance.Metrics.Panics.Swap(0)

	var running int
	if instance.Running() {
		running = 1
	}

	recordTime := time.Now()

	add := func(name string, raw any, unit string, metricType metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Type:        metricType,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("datagrams_total", datagrams, "count", metrics.Counter, "Datagrams received in the interval")
	add("bytes_total", size, "bytes", metrics.Counter, "Payload bytes received in the interval")
	add("dropped_total", dropped, "count", metrics.Counter, "Datagrams rejected by the queue bound in the interval")
	add("panics_total", panics, "count", metrics.Counter, "Recovered panics in the receive loop in the interval")
	add("running", running, "bool", metrics.Gauge, "1 while the receive loop is active")
	return
}
