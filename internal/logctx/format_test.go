package logctx

import (
	"context"
	"strings"
	"syslogsrv/internal/global"
	"testing"
	"time"
)

func TestEventFormat(t *testing.T) {
	ts := time.Date(2026, 1, 31, 12, 34, 56, 123456789, time.UTC)
	tests := []struct {
		name   string
		event  Event
		expect string
	}{
		{
			name: "all fields",
			event: Event{
				Timestamp: ts,
				Severity:  "Info",
				Tags:      []string{"Collector", "UDP"},
				Message:   "hello world",
			},
			expect: "[2026-01-31T12:34:56.123456789Z] [Collector/UDP] [Info] hello world",
		},
		{
			name: "no tags",
			event: Event{
				Timestamp: ts,
				Severity:  "Warn",
				Message:   "something happened",
			},
			expect: "[2026-01-31T12:34:56.123456789Z] [Warn] something happened",
		},
		{
			name: "no severity",
			event: Event{
				Timestamp: ts,
				Tags:      []string{"tag"},
				Message:   "just a message",
			},
			expect: "[2026-01-31T12:34:56.123456789Z] [tag] just a message",
		},
		{
			name:   "only message",
			event:  Event{Message: "bare message"},
			expect: "bare message",
		},
		{
			name:   "empty event",
			event:  Event{},
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Format()
			if got != tt.expect {
				t.Errorf("\ngot  %q\nwant %q", got, tt.expect)
			}
		})
	}
}

func TestPadTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "short nanoseconds padded",
			input:    time.Date(2026, 1, 31, 12, 34, 56, 4832, time.UTC),
			expected: "2026-01-31T12:34:56.000004832Z",
		},
		{
			name:     "single nanosecond",
			input:    time.Date(2026, 1, 31, 12, 34, 56, 7, time.UTC),
			expected: "2026-01-31T12:34:56.000000007Z",
		},
		{
			name:     "full nanoseconds with positive offset",
			input:    time.Date(2026, 1, 31, 12, 34, 56, 987654321, time.FixedZone("UTC+2", 2*3600)),
			expected: "2026-01-31T12:34:56.987654321+02:00",
		},
		{
			name:     "partial nanoseconds with negative offset",
			input:    time.Date(2026, 1, 31, 12, 34, 56, 765, time.FixedZone("UTC-8", -8*3600)),
			expected: "2026-01-31T12:34:56.000000765-08:00",
		},
		{
			name:     "zero nanoseconds",
			input:    time.Date(2026, 1, 31, 12, 34, 56, 0, time.UTC),
			expected: "2026-01-31T12:34:56Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padTimestamp(tt.input)
			if got != tt.expected {
				t.Errorf("got %q want %q", got, tt.expected)
			}
		})
	}
}

func TestGetFormattedLogLines_ChronologicalOrder(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	ctx := New(context.Background(), global.NSTest, 5, done)
	logger := GetLogger(ctx)

	base := time.Now()
	logger.mutex.Lock()
	logger.queue = []Event{
		{Timestamp: base.Add(3 * time.Second), Message: "third"},
		{Message: "zero"},
		{Timestamp: base.Add(1 * time.Second), Message: "first"},
		{Timestamp: base.Add(2 * time.Second), Message: "second"},
	}
	logger.mutex.Unlock()

	lines := logger.GetFormattedLogLines()
	want := []string{"first", "second", "third", "zero"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if !strings.Contains(lines[i], want[i]) {
			t.Fatalf("line %d: got %q, want message containing %q", i, lines[i], want[i])
		}
		if !strings.HasSuffix(lines[i], "\n") {
			t.Fatalf("line %d missing trailing newline: %q", i, lines[i])
		}
	}
}
