package journald

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	exportContentType string = "application/vnd.fdo.journal"
	syslogIdentifier  string = "syslogsrv"
)

// Required by journal remote, read once per process
var bootID = sync.OnceValue(func() (id string) {
	raw, err := os.ReadFile("/proc/sys/kernel/random/boot_id")
	if err != nil {
		id = strings.Repeat("0", 32)
		return
	}
	id = strings.ReplaceAll(strings.TrimSpace(string(raw)), "-", "")
	return
})

// Uploads one journal entry per line of the batch in a single request
func (mod *OutModule) Write(ctx context.Context, batch []string, source string, flushedAt time.Time) (entriesWritten int, err error) {
	if mod == nil || len(batch) == 0 {
		return
	}

	payload := encodeBatch(batch, source, flushedAt, bootID())

	err = sendJournalExport(ctx, mod.sink, mod.url, payload)
	if err != nil {
		err = fmt.Errorf("failed journald upload of %d lines from '%s': %w", len(batch), source, err)
		return
	}
	entriesWritten = len(batch)
	return
}

// Journal export format: entries of KEY=value lines, each entry terminated by an empty line.
// https://systemd.io/JOURNAL_EXPORT_FORMATS/#journal-export-format
func encodeBatch(batch []string, source string, flushedAt time.Time, boot string) (payload []byte) {
	var buf bytes.Buffer
	realtime := strconv.FormatInt(flushedAt.UnixMicro(), 10)

	for _, line := range batch {
		fields := []field{
			{"__REALTIME_TIMESTAMP", realtime}, // Required field
			{"_BOOT_ID", boot},                 // Required field
			{"MESSAGE", line},                  // Required field
			{"SYSLOG_IDENTIFIER", syslogIdentifier},
			{"LOG_FILE", source},
		}
		for _, f := range fields {
			if f.value == "" && f.key != "MESSAGE" {
				continue
			}
			appendField(&buf, f)
		}
		// Terminate with double newline
		buf.WriteByte('\n')
	}
	payload = buf.Bytes()
	return
}

// Values containing newlines use the binary form: key, newline, little-endian uint64 size, data, newline
func appendField(buf *bytes.Buffer, f field) {
	buf.WriteString(f.key)
	if !strings.ContainsRune(f.value, '\n') {
		buf.WriteByte('=')
		buf.WriteString(f.value)
		buf.WriteByte('\n')
		return
	}

	buf.WriteByte('\n')
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(f.value)))
	buf.Write(size[:])
	buf.WriteString(f.value)
	buf.WriteByte('\n')
}
