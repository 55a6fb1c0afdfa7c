package beats

import (
	"context"
	"fmt"
	"os"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"time"
)

// Sends a flushed batch, one event per line. A failed send drops the connection
// so the next batch redials.
func (mod *OutModule) Write(ctx context.Context, batch []string, source string, flushedAt time.Time) (logsSent int, err error) {
	if mod == nil || len(batch) == 0 {
		return
	}

	events := make([]interface{}, 0, len(batch))
	for _, line := range batch {
		events = append(events, mod.event(line, source, flushedAt))
	}

	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	err = mod.connectLocked()
	if err != nil {
		return
	}

	logsSent, err = mod.sink.Send(events)
	if err != nil {
		err = fmt.Errorf("failed sending %d events to beats server: %w", len(events), err)
		_ = mod.sink.Close()
		mod.sink = nil
		return
	}

	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
		"Mirrored %d lines to beats server %s\n", logsSent, mod.endpoint)
	return
}

func (mod *OutModule) event(line, source string, flushedAt time.Time) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": flushedAt,
		"message":    line,

		"host": map[string]interface{}{
			"name":     mod.hostname,
			"hostname": mod.hostname,
		},
		"agent": map[string]interface{}{
			// Meta fields identifying the collector itself
			"program": "syslogsrv",
			"version": global.ProgVersion,
			"type":    "filebeat",
			"pid":     os.Getpid(),
		},
		"log": map[string]interface{}{
			"file": map[string]interface{}{
				"path": source,
			},
		},
	}
	return
}
