package metrics

import (
	"sync"
	"time"
)

type Registry struct {
	mu      sync.RWMutex
	metrics map[time.Time]map[string]map[string]Metric // time slice -> namespace -> name
}

type MetricType string

const (
	Counter MetricType = "counter" // events in the interval
	Gauge   MetricType = "gauge"   // point in time value
	Summary MetricType = "summary" // avg/min/max style
)

// Single recorded value and its identity
type Metric struct {
	Name        string   // e.g. depth, lines_written_total
	Description string
	Namespace   []string // e.g. Collector/Writer
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time // when the value was read
}

type MetricValue struct {
	Raw      any           // int, int64, uint64, float64 or numeric string
	Unit     string        // e.g. "ns", "bytes", "count"
	Interval time.Duration // measurement window
}

// JSON form served by the query server
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
