package journald

import "net/http"

// Mirrors flushed batches to a systemd-journal-remote upload endpoint
type OutModule struct {
	sink *http.Client
	url  string
}

// One journal export field, kept ordered for stable payloads
type field struct {
	key   string
	value string
}
