package metrics

import (
	"fmt"
	"strconv"
	"syslogsrv/internal/global"
	"time"
)

// Combines every stored value of one metric within the window into a single summary metric
func (registry *Registry) Aggregate(aggType, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	if name == "" {
		err = fmt.Errorf("metric name is required for aggregation")
		return
	}

	found := registry.Search(name, namespacePrefix, start, end)
	if len(found) == 0 {
		err = fmt.Errorf("no metrics named '%s' found in requested window", name)
		return
	}

	var sum, min, max float64
	for index, metric := range found {
		var value float64
		value, err = toFloat(metric.Value.Raw)
		if err != nil {
			err = fmt.Errorf("metric '%s' is not numeric: %w", name, err)
			return
		}

		sum += value
		if index == 0 || value < min {
			min = value
		}
		if index == 0 || value > max {
			max = value
		}
	}

	var raw float64
	switch aggType {
	case global.MetricSum:
		raw = sum
	case global.MetricMin:
		raw = min
	case global.MetricMax:
		raw = max
	case global.MetricAvg, "":
		aggType = global.MetricAvg
		raw = sum / float64(len(found))
	default:
		err = fmt.Errorf("unknown aggregation type '%s'", aggType)
		return
	}

	first := found[0]
	result = Metric{
		Name:        first.Name,
		Description: fmt.Sprintf("%s of %s", aggType, first.Description),
		Namespace:   first.Namespace,
		Type:        Summary,
		Timestamp:   found[len(found)-1].Timestamp,
		Value: MetricValue{
			Raw:      raw,
			Unit:     first.Value.Unit,
			Interval: found[len(found)-1].Timestamp.Sub(first.Timestamp),
		},
	}
	return
}

func toFloat(raw any) (value float64, err error) {
	switch typed := raw.(type) {
	case int:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case uint64:
		value = float64(typed)
	case float64:
		value = typed
	case string:
		value, err = strconv.ParseFloat(typed, 64)
	default:
		err = fmt.Errorf("unsupported value type %T", raw)
	}
	return
}
