// Central logging system. Buffers events in memory and hands them to a watcher for output.
package logctx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"syslogsrv/internal/global"
	"time"
)

// Default buffered event ceiling. Received messages are echoed at data verbosity,
// so a slow console must not grow the buffer without limit.
const DefaultMaxQueue int = 100_000

// Logger Constructor
func NewLogger(id string, logLevel int, done <-chan struct{}) (logger *Logger) {
	logger = &Logger{
		ID:         id,
		CreatedAt:  time.Now(),
		Done:       done,
		PrintLevel: logLevel,
		MaxQueue:   DefaultMaxQueue,
		queue:      make([]Event, 0),
		wg:         &sync.WaitGroup{},
	}
	logger.cond = sync.NewCond(&logger.mutex)
	return
}

// Creates a logger and embeds it in a context derived from baseCtx.
// Tag list starts with the given id.
func New(baseCtx context.Context, id string, logLevel int, done <-chan struct{}) (ctxLogger context.Context) {
	logger := NewLogger(id, logLevel, done)
	ctxLogger = WithLogger(baseCtx, logger)
	ctxLogger = AppendCtxTag(ctxLogger, id)
	return
}

// Attach the logger to context
func WithLogger(ctx context.Context, logger *Logger) (ctxLogger context.Context) {
	ctxLogger = context.WithValue(ctx, global.LoggerKey, logger)
	return
}

// Extracts Logger from context or returns nil
func GetLogger(ctx context.Context) (logger *Logger) {
	logger, ok := ctx.Value(global.LoggerKey).(*Logger)
	if !ok {
		logger = nil
	}
	return
}

// Change the loggers level
func SetLogLevel(ctx context.Context, newLevel int) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}
	logger.mutex.Lock()
	logger.PrintLevel = newLevel
	logger.mutex.Unlock()
}

// Hold main thread exit until watchers finish writing buffered events
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Wake broadcasts to any watcher waiting for events
func (logger *Logger) Wake() {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	logger.cond.Broadcast()
}

// Number of events discarded because the buffer was full
func (logger *Logger) Dropped() (count uint64) {
	logger.mutex.Lock()
	count = logger.dropped
	logger.mutex.Unlock()
	return
}

// Entry for logging events
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	// Only format when there is something to format
	text := message
	if len(vars) > 0 && strings.Contains(message, "%") {
		text = fmt.Sprintf(message, vars...)
	}

	logger.record(eventLevel, severity, GetTagList(ctx), text)
}

func (logger *Logger) record(eventLevel int, severity string, tags []string, text string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	// Errors always print
	if eventLevel > logger.PrintLevel && severity != global.ErrorLog {
		return
	}

	if logger.MaxQueue > 0 && len(logger.queue) >= logger.MaxQueue {
		excess := len(logger.queue) - logger.MaxQueue + 1
		logger.queue = logger.queue[excess:]
		logger.dropped += uint64(excess)
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  severity,
		Message:   text,
	})
	logger.cond.Signal()
}
