package logctx

import (
	"fmt"
	"io"
	"syslogsrv/internal/global"
	"time"
)

const (
	dedupWindow      = 5 * time.Second // repeats older than this are not duplicates
	dedupMinRepeats  = 10
	suppressCooldown = 1 * time.Minute
)

type dedupState struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}

// Starts a go routine that reads events and writes formatted output to io.Writer.
// Stops once logger.Done is closed and the buffer is empty.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			now := time.Now()
			if dedup.suppress(event, now) {
				if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
					fmt.Fprint(output, suppressionNotice(event, global.InfoLog, dedup.repeatCount, dedup.lastMsg))
					dedup.lastSuppressTime = now
					dedup.repeatCount = 0
				}
				continue
			}

			fmt.Fprint(output, event.Format())
		}
	}()
}

// Blocks until an event is available. Returns false when done and drained.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}

// Tracks highly repetitive messages. Returns true when event should not be printed.
func (dedup *dedupState) suppress(event Event, now time.Time) (skip bool) {
	if event.Message != "" && event.Message == dedup.lastMsg && now.Sub(event.Timestamp) <= dedupWindow {
		dedup.repeatCount++
		skip = true
		return
	}
	dedup.lastMsg = event.Message
	dedup.repeatCount = 1
	return
}
