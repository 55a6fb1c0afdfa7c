package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default query window when no start is given
const defaultLookback = 1 * time.Minute

// Reads starttime/endtime. Both accept RFC3339 timestamps or negative durations
// relative to now ("-5m"); endtime also accepts "now". An unparseable relative start
// falls back to the default lookback.
func parseWindow(clientRequest *http.Request, now time.Time) (start, end time.Time, err error) {
	rawStartTime := clientRequest.FormValue("starttime")
	switch {
	case rawStartTime == "":
		start = now.Add(-defaultLookback)
	case rawStartTime[0] == '-' || rawStartTime[0] == '+':
		dur, parseErr := time.ParseDuration(rawStartTime)
		if parseErr != nil {
			start = now.Add(-defaultLookback)
			break
		}
		if dur > 0 {
			err = fmt.Errorf("starttime must not be in the future")
			return
		}
		start = now.Add(dur)
	default:
		start, err = time.Parse(time.RFC3339Nano, rawStartTime)
		if err != nil {
			err = fmt.Errorf("invalid starttime: %w", err)
			return
		}
	}

	rawEndTime := clientRequest.FormValue("endtime")
	switch {
	case rawEndTime == "" || rawEndTime == "now":
		end = now
	case strings.HasPrefix(rawEndTime, "-"):
		var dur time.Duration
		dur, err = time.ParseDuration(rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid relative endtime: %w", err)
			return
		}
		end = now.Add(dur)
	case strings.HasPrefix(rawEndTime, "+"):
		err = fmt.Errorf("endtime must not be in the future")
		return
	default:
		end, err = time.Parse(time.RFC3339Nano, rawEndTime)
		if err != nil {
			err = fmt.Errorf("invalid endtime: %w", err)
			return
		}
	}

	if start.After(end) {
		err = fmt.Errorf("starttime is after endtime")
	}
	return
}

// Splits a request path below prefix into namespace components (nil for none)
func namespaceFromPath(path, prefix string) (namespace []string) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" {
		return
	}
	namespace = strings.Split(raw, "/")
	return
}
