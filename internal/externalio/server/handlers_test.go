package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"syslogsrv/internal/global"
	"syslogsrv/internal/metrics"
	"testing"
	"time"
)

func TestHandleDataAndAggregation(t *testing.T) {
	ctx := context.Background()

	data := func(w http.ResponseWriter, r *http.Request) {
		handleData(ctx, mockDataSearcher(nil), w, r)
	}
	agg := func(w http.ResponseWriter, r *http.Request) {
		handleAggregation(ctx, mockAggSearcher(metrics.Metric{}, nil), w, r)
	}

	tests := []struct {
		name       string
		path       string
		handler    func(http.ResponseWriter, *http.Request)
		wantStatus int
	}{
		{"data default times", global.DataPath + "?name=test", data, http.StatusOK},
		{"data invalid starttime", global.DataPath + "?starttime=badtime", data, http.StatusBadRequest},
		{"data invalid relative start falls back", global.DataPath + "?starttime=-5w", data, http.StatusOK},
		{"data future relative end time", global.DataPath + "?endtime=+2y", data, http.StatusBadRequest},
		{"data relative start time past", global.DataPath + "?starttime=-5m", data, http.StatusOK},
		{"data relative start time future", global.DataPath + "?starttime=+15m", data, http.StatusBadRequest},
		{"data absolute start time", global.DataPath + "?starttime=2001-01-02T01:02:03.001Z", data, http.StatusOK},
		{"data start after end", global.DataPath + "?starttime=-1m&endtime=-5m", data, http.StatusBadRequest},
		{"agg invalid starttime", global.AggregationPath + "?starttime=badtime", agg, http.StatusBadRequest},
		{"agg relative start time past", global.AggregationPath + "?starttime=-5m", agg, http.StatusOK},
		{"agg invalid endtime", global.AggregationPath + "?endtime=yesterday", agg, http.StatusBadRequest},
		{
			name: "aggregation returns error as JSON",
			path: global.AggregationPath + "?aggregation=sum",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx, mockAggSearcher(metrics.Metric{}, errors.New("boom")), w, r)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			tt.handler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleDiscovery(t *testing.T) {
	ctx := context.Background()
	sample := []metrics.Metric{{
		Name:      "depth",
		Namespace: []string{global.NSCollector, global.NSQueue},
		Type:      metrics.Gauge,
		Value:     metrics.MetricValue{Unit: "count"},
	}}

	tests := []struct {
		name       string
		path       string
		results    []metrics.Metric
		wantStatus int
		wantBody   string
	}{
		{"all metrics", global.DiscoveryPath, sample, http.StatusOK, `"name":"depth"`},
		{"type filter", global.DiscoveryPath + "?type=GAUGE", sample, http.StatusOK, `"type":"gauge"`},
		{"invalid type", global.DiscoveryPath + "?type=histogram", sample, http.StatusBadRequest, ""},
		{"no results", global.DiscoveryPath + "Nothing/", nil, http.StatusOK, `"error":"Search returned no results"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handleDiscovery(ctx, mockDiscoverer(tt.results), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q missing %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{"defaults", "", now.Add(-time.Minute), now, false},
		{"relative both", "?starttime=-10m&endtime=-5m", now.Add(-10 * time.Minute), now.Add(-5 * time.Minute), false},
		{"end now", "?starttime=-2h&endtime=now", now.Add(-2 * time.Hour), now, false},
		{"absolute", "?starttime=2024-03-09T11:00:00Z&endtime=2024-03-09T11:30:00Z",
			now.Add(-time.Hour), now.Add(-30 * time.Minute), false},
		{"bad relative start defaults", "?starttime=-3q", now.Add(-time.Minute), now, false},
		{"future start", "?starttime=+1m", time.Time{}, time.Time{}, true},
		{"bad relative end", "?endtime=-3q", time.Time{}, time.Time{}, true},
		{"inverted", "?starttime=-1m&endtime=-2m", time.Time{}, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, global.DataPath+tt.query, nil)
			start, end, err := parseWindow(req, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got window %v - %v", start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("window = %v - %v, want %v - %v", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNamespaceFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{global.DataPath, ""},
		{global.DataPath + "Collector", "Collector"},
		{global.DataPath + "Collector/Queue/", "Collector|Queue"},
	}
	for _, tt := range tests {
		got := strings.Join(namespaceFromPath(tt.path, global.DataPath), "|")
		if got != tt.want {
			t.Errorf("namespaceFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEndToEndWithRegistry(t *testing.T) {
	registry := metrics.New()
	slice := registry.NewTimeSlice(time.Now(), time.Second)
	registry.Add(slice, []metrics.Metric{
		{Name: "depth", Namespace: []string{global.NSCollector, global.NSQueue}, Type: metrics.Gauge,
			Value: metrics.MetricValue{Raw: 4, Unit: "count"}, Timestamp: slice},
		{Name: "lines_written_total", Namespace: []string{global.NSCollector, global.NSWriter}, Type: metrics.Counter,
			Value: metrics.MetricValue{Raw: uint64(9), Unit: "count"}, Timestamp: slice},
	})

	server := SetupListener(context.Background(), global.HTTPListenPort, RegistryQueries(registry))
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + global.DataPath + "Collector/Writer?starttime=-1h")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	var results []metrics.JMetric
	err = json.NewDecoder(resp.Body).Decode(&results)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].Name != "lines_written_total" || results[0].Value.Raw != "9" {
		t.Errorf("unexpected results %+v", results)
	}
}
