package tlstcp

import (
	"syslogsrv/internal/metrics"
	"time"
)

func (listener *Listener) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	accepted := listener.Metrics.Accepted.Swap(0)
	acceptErrors := listener.Metrics.AcceptErrors.Swap(0)
	handshakeFailures := listener.Metrics.HandshakeFailures.Swap(0)
	streamErrors := listener.Metrics.StreamErrors.Swap(0)
	cleanCloses := listener.Metrics.CleanCloses.Swap(0)
	lines := listener.Metrics.Lines.Swap(0)
	size := listener.Metrics.Bytes.Swap(0)
	dropped := listener.Metrics.Dropped.Swap(0)
	active := listener.Metrics.Active.Load()

	recordTime := time.Now()

	add := func(name string, raw any, unit string, metricType metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   listener.Namespace,
			Type:        metricType,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("active_connections", active, "count", metrics.Gauge, "Connections currently open")
	add("accepted_total", accepted, "count", metrics.Counter, "Connections accepted in the interval")
	add("accept_errors_total", acceptErrors, "count", metrics.Counter, "Accept failures in the interval")
	add("handshake_failures_total", handshakeFailures, "count", metrics.Counter, "Connections that failed the TLS handshake in the interval")
	add("stream_errors_total", streamErrors, "count", metrics.Counter, "Connections that failed while streaming in the interval")
	add("clean_closes_total", cleanCloses, "count", metrics.Counter, "Connections closed by the peer in the interval")
	add("lines_total", lines, "count", metrics.Counter, "Lines enqueued in the interval")
	add("bytes_total", size, "bytes", metrics.Counter, "Bytes enqueued in the interval")
	add("dropped_total", dropped, "count", metrics.Counter, "Lines rejected by the queue bound in the interval")
	return
}
