package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syslogsrv/internal/global"
	"time"
)

// Output file for the date of the flush: <dir>/<yyyyMMdd>-<filename>
func FilePath(directory, filename string, flushedAt time.Time) (path string) {
	path = filepath.Join(directory, flushedAt.Format(global.LogFileDateLayout)+"-"+filename)
	return
}

// First line of every new output file
func Header(createdAt time.Time) (header string) {
	header = fmt.Sprintf(global.LogFileHeaderFormat, createdAt.Format(global.MessageTimestampLayout))
	return
}

// Appends the batch to path in a single write, creating the file with a header line when missing
func appendBatch(path string, batch []string, now time.Time) (created bool, written int, err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND, 0640)
	if err == nil {
		created = true
	} else if errors.Is(err, fs.ErrExist) {
		file, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0640)
	}
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return
	}

	var buffer strings.Builder
	if created {
		buffer.WriteString(Header(now))
		buffer.WriteByte('\n')
	}
	for _, line := range batch {
		buffer.WriteString(line)
		buffer.WriteByte('\n')
	}

	written, err = file.WriteString(buffer.String())
	closeErr := file.Close()
	if err != nil {
		err = fmt.Errorf("failed to append to log file: %w", err)
		return
	}
	if closeErr != nil {
		err = fmt.Errorf("failed to close log file: %w", closeErr)
		return
	}
	return
}
