package metrics

import (
	"syslogsrv/internal/global"
	"testing"
	"time"
)

func setupRegistryWithData(t *testing.T) (registry *Registry, slices map[string]time.Time) {
	t.Helper()

	registry = New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	interval := time.Minute

	ts1 := registry.NewTimeSlice(base, interval)
	ts2 := registry.NewTimeSlice(base.Add(1*time.Minute), interval)
	ts3 := registry.NewTimeSlice(base.Add(2*time.Minute+10*time.Second), interval)

	queueNS := []string{"Collector", "Queue"}
	writerNS := []string{"Collector", "Writer"}
	udpNS := []string{"Collector", "UDP"}

	metric := func(ts time.Time, ns []string, name string, typ MetricType, raw any, unit string) Metric {
		return Metric{
			Name:        name,
			Description: name + " description",
			Namespace:   ns,
			Type:        typ,
			Timestamp:   ts,
			Value:       MetricValue{Raw: raw, Unit: unit, Interval: interval},
		}
	}

	registry.Add(ts1, []Metric{
		metric(ts1, queueNS, "depth", Gauge, int64(10), "count"),
		metric(ts1, udpNS, "datagrams_total", Counter, uint64(5), "count"),
		metric(ts1, writerNS, "flush_time_ns", Summary, 100.0, "ns"),
	})
	registry.Add(ts2, []Metric{
		metric(ts2, queueNS, "depth", Gauge, uint64(20), "count"),
		metric(ts2, writerNS, "flush_time_ns", Summary, "150", "us"),
	})
	registry.Add(ts3, []Metric{
		metric(ts3, queueNS, "depth", Gauge, -5, "count"),
		metric(ts3, queueNS, "bad", Gauge, struct{}{}, "count"),
	})

	slices = map[string]time.Time{"ts1": ts1, "ts2": ts2, "ts3": ts3}
	return
}

func TestNewTimeSlice(t *testing.T) {
	registry := New()
	now := time.Date(2026, 1, 1, 10, 30, 45, 0, time.UTC)

	slice := registry.NewTimeSlice(now, time.Minute)
	if !slice.Equal(time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected truncated slice, got %v", slice)
	}

	raw := registry.NewTimeSlice(now, 0)
	if !raw.Equal(now) {
		t.Fatalf("expected untouched time for zero interval, got %v", raw)
	}

	// Unknown slice is ignored
	registry.Add(now.Add(time.Hour), []Metric{{Name: "lost"}})
	if got := registry.Search("lost", nil, time.Time{}, time.Time{}); len(got) != 0 {
		t.Fatalf("expected metric for unknown slice to be dropped, got %d", len(got))
	}
}

func TestRegistry_Search(t *testing.T) {
	registry, ts := setupRegistryWithData(t)

	tests := []struct {
		name            string
		metricName      string
		namespacePrefix []string
		start           time.Time
		end             time.Time
		want            int
	}{
		{"all metrics", "", nil, time.Time{}, time.Time{}, 7},
		{"name must match exactly", "dep", nil, time.Time{}, time.Time{}, 0},
		{"depth all namespaces", "depth", nil, time.Time{}, time.Time{}, 3},
		{"depth queue namespace", "depth", []string{"Collector", "Queue"}, time.Time{}, time.Time{}, 3},
		{"depth wrong namespace", "depth", []string{"Collector", "UDP"}, time.Time{}, time.Time{}, 0},
		{"trailing slash namespace", "depth", []string{"Collector", "Queue", ""}, time.Time{}, time.Time{}, 3},
		{"prefix only", "", []string{"Collector"}, time.Time{}, time.Time{}, 7},
		{"single slice window", "depth", nil, ts["ts3"], ts["ts3"], 1},
		{"window bounds", "", nil, ts["ts2"], ts["ts3"], 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := registry.Search(tt.metricName, tt.namespacePrefix, tt.start, tt.end)
			if len(results) != tt.want {
				t.Fatalf("expected %d results, got %d", tt.want, len(results))
			}
		})
	}

	ordered := registry.Search("depth", nil, time.Time{}, time.Time{})
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Timestamp.Before(ordered[i-1].Timestamp) {
			t.Fatalf("search results not ordered oldest first")
		}
	}
}

func TestRegistry_Discover(t *testing.T) {
	registry, _ := setupRegistryWithData(t)

	tests := []struct {
		name      string
		metric    string
		unit      string
		mType     MetricType
		ns        []string
		wantCount int
	}{
		{"all", "", "", "", nil, 5},
		{"unit filter", "", "ns", "", nil, 1},
		{"counter only", "", "", Counter, nil, 1},
		{"queue namespace", "", "", "", []string{"Collector", "Queue"}, 2},
		{"name substring", "flush", "", "", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := registry.Discover(tt.metric, "", tt.ns, tt.unit, tt.mType)
			if len(results) != tt.wantCount {
				t.Fatalf("expected %d results, got %d", tt.wantCount, len(results))
			}
			for _, r := range results {
				if r.Value.Raw != nil || !r.Timestamp.IsZero() {
					t.Fatalf("discovered metric carries data: %+v", r)
				}
			}
		})
	}
}

func TestRegistry_Aggregate(t *testing.T) {
	registry, ts := setupRegistryWithData(t)

	tests := []struct {
		name      string
		aggType   string
		metric    string
		ns        []string
		want      float64
		wantError bool
	}{
		{"sum mixed types", global.MetricSum, "depth", []string{"Collector", "Queue"}, 25, false},
		{"min negative", global.MetricMin, "depth", []string{"Collector", "Queue"}, -5, false},
		{"max", global.MetricMax, "depth", []string{"Collector", "Queue"}, 20, false},
		{"avg", global.MetricAvg, "depth", []string{"Collector", "Queue"}, 25.0 / 3.0, false},
		{"default is avg", "", "depth", []string{"Collector", "Queue"}, 25.0 / 3.0, false},
		{"numeric string", global.MetricSum, "flush_time_ns", []string{"Collector", "Writer"}, 250, false},
		{"non-numeric", global.MetricSum, "bad", []string{"Collector", "Queue"}, 0, true},
		{"missing metric", global.MetricSum, "missing", nil, 0, true},
		{"unknown aggregation", "median", "depth", nil, 0, true},
		{"empty name", global.MetricSum, "", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := registry.Aggregate(tt.aggType, tt.metric, tt.ns, ts["ts1"], ts["ts3"])
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Value.Raw != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, result.Value.Raw)
			}
			if result.Type != Summary {
				t.Fatalf("expected summary type, got %s", result.Type)
			}
		})
	}
}

func TestRegistry_Prune(t *testing.T) {
	registry, ts := setupRegistryWithData(t)

	registry.Prune(ts["ts3"].Add(30*time.Second), time.Minute)

	if registry.Slices() != 1 {
		t.Fatalf("expected 1 remaining slice, got %d", registry.Slices())
	}
	for _, m := range registry.Search("", nil, time.Time{}, time.Time{}) {
		if m.Timestamp.Before(ts["ts3"]) {
			t.Fatalf("unexpected old metric timestamp: %v", m.Timestamp)
		}
	}
}
