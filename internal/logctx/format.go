package logctx

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Stringify full event
func (event Event) Format() (text string) {
	// Only print parts that are present
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+padTimestamp(event.Timestamp)+"]")
	}
	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}
	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}

	// No newline, message creator determines newlines
	text = strings.Join(parts, " ")
	return
}

// Snapshot of buffered events, oldest first, each terminated by a newline
func (logger *Logger) GetFormattedLogLines() (formatted []string) {
	logger.mutex.Lock()
	events := make([]Event, len(logger.queue))
	copy(events, logger.queue)
	logger.mutex.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].Timestamp, events[j].Timestamp
		// Zero timestamps sort last
		if ti.IsZero() {
			return false
		}
		if tj.IsZero() {
			return true
		}
		return ti.Before(tj)
	})

	formatted = make([]string, 0, len(events))
	for _, event := range events {
		line := event.Format()
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		formatted = append(formatted, line)
	}
	return
}

// Ensures fixed length strings for timestamps (nanoseconds always 9 digits)
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format("2006-01-02T15:04:05.000000000Z07:00")
	if timestamp.Nanosecond() == 0 {
		formatted = timestamp.Format(time.RFC3339)
	}
	return
}

// Compact form used in suppression notices
func suppressionNotice(event Event, severity string, count int, msg string) (text string) {
	text = fmt.Sprintf("[%s] [%s] [%s] Suppressed %d repeated messages: %s",
		padTimestamp(event.Timestamp),
		strings.Join(event.Tags, "/"),
		severity,
		count,
		msg)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return
}
