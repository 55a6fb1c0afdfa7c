package server

import (
	"context"
	"syslogsrv/internal/metrics"
	"time"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Endpoint listing served at the root path
type JIndex struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type DataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
type Discoverer func(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
type AggSearcher func(aggType, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error)

// Registry queries backing the endpoints
type Queries struct {
	Search    DataSearcher
	Discover  Discoverer
	Aggregate AggSearcher
}

// Queries answered directly by a metric registry
func RegistryQueries(registry *metrics.Registry) (queries Queries) {
	queries = Queries{
		Search:    registry.Search,
		Discover:  registry.Discover,
		Aggregate: registry.Aggregate,
	}
	return
}
