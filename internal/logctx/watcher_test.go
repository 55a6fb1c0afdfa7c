package logctx

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"syslogsrv/internal/global"
	"testing"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_WaitWakeAndDedup(t *testing.T) {
	done := make(chan struct{})

	ctx := New(context.Background(), global.NSTest, 5, done)
	logger := GetLogger(ctx)

	output := &lockedBuffer{}
	StartWatcher(logger, output)

	// Explicit wake with empty queue must not write anything
	logger.Wake()

	const repeats = 11
	msg := "duplicate-message\n"
	for i := 0; i < repeats; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "%s", msg)
	}
	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "final\n")

	close(done)
	logger.Wake()
	logger.Wait()

	out := output.String()
	if strings.Count(out, "duplicate-message") < 2 {
		t.Fatalf("expected original message and suppression notice, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed 10 repeated messages") {
		t.Fatalf("expected suppression notice, got:\n%s", out)
	}
	if !strings.Contains(out, "final") {
		t.Fatalf("expected buffered events to be flushed before exit, got:\n%s", out)
	}
}
