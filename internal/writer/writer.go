// Batched persistence of queued messages to date-bucketed files
package writer

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/queue"
	"time"
)

const (
	PolicyExit   string = "exit"   // any write error stops the collector
	PolicyRetain string = "retain" // failed batches go back to the queue
)

func New(namespace []string, outbox *queue.MessageQueue, opts Options) (new *BatchWriter) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = global.DefaultWriterPollInterval
	}
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = PolicyExit
	}

	new = &BatchWriter{
		Namespace:     append(append([]string(nil), namespace...), global.NSWriter),
		queue:         outbox,
		directory:     opts.Directory,
		filename:      opts.Filename,
		interval:      opts.Interval,
		pollInterval:  opts.PollInterval,
		failurePolicy: strings.ToLower(opts.FailurePolicy),
		mirrors:       opts.Mirrors,
		clock:         time.Now,
		forceFlush:    make(chan struct{}, 1),
	}
	new.state.LastFlush = new.clock()
	return
}

// Polls until ctx is cancelled, flushing whenever the interval has elapsed since the last flush.
// On cancellation one final flush runs regardless of the interval.
// Returns an error wrapping ErrWriterFatal when a write fails under the exit policy,
// or when lines retained after a failed write are still queued at shutdown.
func (writer *BatchWriter) Run(ctx context.Context) (err error) {
	ctx = logctx.OverwriteCtxTag(ctx, writer.Namespace)

	ticker := time.NewTicker(writer.pollInterval)
	defer ticker.Stop()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Writing batches every %s to %s\n", writer.interval.String(), FilePath(writer.directory, writer.filename, writer.clock()))

	for {
		select {
		case <-ctx.Done():
			// Ingress has stopped by now, persist whatever is left
			err = writer.safeFlush(context.WithoutCancel(ctx), writer.clock())
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Final flush failed: %v\n", err)
				return
			}
			// Retained batches have no later flush to go to
			leftover := writer.queue.Len()
			if leftover > 0 {
				err = fmt.Errorf("%w: %d queued lines not written at shutdown", ErrWriterFatal, leftover)
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
				return
			}
			logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Log writer stopped\n")
			return
		case <-writer.forceFlush:
			err = writer.safeFlush(ctx, writer.clock())
		case <-ticker.C:
			now := writer.clock()
			if now.Sub(writer.state.LastFlush) < writer.interval {
				continue
			}
			err = writer.safeFlush(ctx, now)
		}

		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
			return
		}
	}
}

// Requests an immediate flush from the Run loop. Never blocks.
func (writer *BatchWriter) ForceFlush() {
	select {
	case writer.forceFlush <- struct{}{}:
	default:
	}
}

// Snapshot of writer progress. Only meaningful from the Run goroutine or after Run returned.
func (writer *BatchWriter) State() State {
	return writer.state
}

// Recovers panics into fatal errors so a broken writer never leaves the collector running without output
func (writer *BatchWriter) safeFlush(ctx context.Context, now time.Time) (err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in log writer: %v\n%s", fatalError, stack)
			err = fmt.Errorf("%w: panic during flush: %v", ErrWriterFatal, fatalError)
		}
	}()
	err = writer.Flush(ctx, now)
	return
}

// Drains the queue and appends the batch to the file for now's date.
// An empty drain only advances the last flush time.
func (writer *BatchWriter) Flush(ctx context.Context, now time.Time) (err error) {
	start := time.Now()

	batch := writer.queue.Drain()
	if len(batch) == 0 {
		writer.state.LastFlush = now
		writer.Metrics.EmptyTicks.Add(1)
		return
	}

	path := FilePath(writer.directory, writer.filename, now)
	created, written, err := appendBatch(path, batch, now)
	writer.Metrics.Bytes.Add(uint64(written))
	if err != nil {
		writer.Metrics.Failures.Add(1)
		writer.state.LastFlush = now

		if writer.failurePolicy == PolicyRetain {
			writer.queue.Requeue(batch)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Failed writing %d lines to %s, retained for retry: %v\n", len(batch), path, err)
			err = nil
			return
		}

		err = fmt.Errorf("%w: %d lines lost writing %s: %w", ErrWriterFatal, len(batch), path, err)
		return
	}

	if created {
		writer.Metrics.FilesCreated.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Created log file %s\n", path)
	}

	writer.state.LastFlush = now
	writer.state.CurrentPath = path
	writer.Metrics.Flushes.Add(1)
	writer.Metrics.Lines.Add(uint64(len(batch)))
	writer.Metrics.LastFlushNs.Store(time.Since(start).Nanoseconds())

	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog, "Wrote %d lines to %s\n", len(batch), path)

	for _, mirror := range writer.mirrors {
		sent, mirrorErr := mirror.Write(ctx, batch, path, now)
		writer.Metrics.MirrorSent.Add(uint64(sent))
		if mirrorErr != nil {
			writer.Metrics.MirrorFailures.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Mirror failed: %v\n", mirrorErr)
		}
	}
	return
}
