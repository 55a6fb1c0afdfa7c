package metrics

import (
	"fmt"
	"strings"
	"time"
)

// Converts internal metric to its JSON form
func (inMetric Metric) Convert() (outMetric JMetric) {
	outMetric = JMetric{
		Name:        inMetric.Name,
		Description: inMetric.Description,
		Namespace:   strings.Join(inMetric.Namespace, "/"),
		Type:        string(inMetric.Type),
		Timestamp:   inMetric.Timestamp.Format(time.RFC3339Nano),
		Value: JMetricValue{
			Raw:      fmt.Sprint(inMetric.Value.Raw),
			Unit:     inMetric.Value.Unit,
			Interval: inMetric.Value.Interval.String(),
		},
	}
	return
}

// Converts a batch, keeping order
func ConvertAll(in []Metric) (out []JMetric) {
	out = make([]JMetric, 0, len(in))
	for _, metric := range in {
		out = append(out, metric.Convert())
	}
	return
}
