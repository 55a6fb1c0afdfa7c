package gatherer

import (
	"syslogsrv/internal/metrics"
	"time"
)

// Anything that reports (and resets) its counters once per interval
type Source interface {
	CollectMetrics(interval time.Duration) []metrics.Metric
}

type Gatherer struct {
	Interval  time.Duration     // Record interval
	Retention time.Duration     // Maximum time to keep metrics for
	Registry  *metrics.Registry // Storage for metric data
	Sources   []Source
	Pressure  func() float64 // queue bytes relative to free memory, nil to skip the check
}
