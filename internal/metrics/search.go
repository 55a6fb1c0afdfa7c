package metrics

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Prefix match of namespace components. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) bool {
	// Trailing empty component from paths like "Collector/Queue/"
	if len(queryNS) > 0 && queryNS[len(queryNS)-1] == "" {
		queryNS = queryNS[:len(queryNS)-1]
	}
	if len(metricNS) < len(queryNS) {
		return false
	}
	return slices.Equal(metricNS[:len(queryNS)], queryNS)
}

// Returns all metrics with the given name (all names if empty) under namespacePrefix,
// oldest time slice first. Zero start/end leave that side of the window open.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	var timestamps []time.Time
	for ts := range registry.metrics {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	slices.SortFunc(timestamps, func(a, b time.Time) int { return a.Compare(b) })

	for _, ts := range timestamps {
		for nsStr, byName := range registry.metrics[ts] {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			if name != "" {
				if metric, ok := byName[name]; ok {
					results = append(results, metric)
				}
				continue
			}
			for _, metric := range byName {
				results = append(results, metric)
			}
		}
	}
	return
}

// Lists distinct metric definitions (no values or timestamps) matching the filters.
// Name and description match by substring, unit and type exactly.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]Metric)
	for _, byNamespace := range registry.metrics {
		for nsStr, byName := range byNamespace {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			for _, metric := range byName {
				if name != "" && !strings.Contains(metric.Name, name) {
					continue
				}
				if description != "" && !strings.Contains(metric.Description, description) {
					continue
				}
				if unit != "" && metric.Value.Unit != unit {
					continue
				}
				if metricType != "" && metric.Type != metricType {
					continue
				}

				key := nsStr + "|" + metric.Name + "|" + string(metric.Type) + "|" + metric.Value.Unit
				if _, exists := seen[key]; exists {
					continue
				}
				seen[key] = Metric{
					Name:        metric.Name,
					Description: metric.Description,
					Namespace:   metric.Namespace,
					Type:        metric.Type,
					Value:       MetricValue{Unit: metric.Value.Unit},
				}
			}
		}
	}

	results = make([]Metric, 0, len(seen))
	for _, metric := range seen {
		results = append(results, metric)
	}
	slices.SortFunc(results, func(a, b Metric) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.Join(a.Namespace, "/"), strings.Join(b.Namespace, "/")); c != 0 {
			return c
		}
		return cmp.Compare(a.Value.Unit, b.Value.Unit)
	})
	return
}
