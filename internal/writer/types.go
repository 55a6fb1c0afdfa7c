package writer

import (
	"context"
	"errors"
	"sync/atomic"
	"syslogsrv/internal/queue"
	"time"
)

// Wrapped by every error that must stop the collector
var ErrWriterFatal = errors.New("log writer failed")

// Optional secondary destination for flushed batches. Failures never stop the writer.
type Mirror interface {
	Write(ctx context.Context, batch []string, source string, flushedAt time.Time) (sent int, err error)
}

type Options struct {
	Directory     string
	Filename      string
	Interval      time.Duration // minimum time between flushes
	PollInterval  time.Duration // how often flush eligibility is checked
	FailurePolicy string        // "exit" or "retain"
	Mirrors       []Mirror      // secondary destinations, may be empty
}

// Periodically drains the queue into date-bucketed files
type BatchWriter struct {
	Namespace     []string
	queue         *queue.MessageQueue
	directory     string
	filename      string
	interval      time.Duration
	pollInterval  time.Duration
	failurePolicy string
	mirrors       []Mirror
	clock         func() time.Time
	forceFlush    chan struct{}
	state         State // owned by the Run goroutine
	Metrics       MetricStorage
}

// Writer-owned progress
type State struct {
	LastFlush   time.Time
	CurrentPath string
}

type MetricStorage struct {
	Flushes        atomic.Uint64 // flushes that wrote at least one line
	EmptyTicks     atomic.Uint64 // eligible flushes with nothing queued
	Lines          atomic.Uint64 // lines written
	Bytes          atomic.Uint64 // bytes written, headers included
	Failures       atomic.Uint64 // failed file writes
	FilesCreated   atomic.Uint64 // new date bucket files
	LastFlushNs    atomic.Int64  // duration of the most recent flush
	MirrorSent     atomic.Uint64 // lines accepted by mirrors
	MirrorFailures atomic.Uint64 // failed mirror sends
}
