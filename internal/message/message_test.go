package message

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	received := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name       string
		text       string
		timestamps bool
		want       string
	}{
		{"plain", "<34>Oct 11 22:14:15 host su: failed", false, "<34>Oct 11 22:14:15 host su: failed"},
		{"timestamped", "hello", true, "03/07/2026 14:05:09 hello"},
		{"empty plain", "", false, ""},
		{"empty timestamped", "", true, "03/07/2026 14:05:09 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.text, tt.timestamps, received)
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte("test message"), "test message"},
		{"multibyte", []byte("überwachung ✓"), "überwachung ✓"},
		{"invalid byte replaced", []byte{'a', 0xff, 'b'}, "a�b"},
		{"truncated sequence replaced", []byte{'x', 0xe2, 0x9c}, "x�"},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestTrimLineEnding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"line\n", "line"},
		{"line\r\n", "line"},
		{"line", "line"},
		{"\r\n", ""},
		{"", ""},
		{"a\rb", "a\rb"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TrimLineEnding(tt.in); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}
