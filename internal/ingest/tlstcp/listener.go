// TLS over TCP syslog ingestion
package tlstcp

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/queue"
	"time"
)

func New(namespace []string, listener net.Listener, tlsConfig *tls.Config, outbox *queue.MessageQueue, displayTimestamps bool, maxLineSize int) (new *Listener) {
	if maxLineSize <= 0 {
		maxLineSize = global.DefaultMaxLineSize
	}
	new = &Listener{
		Namespace:         append(append([]string(nil), namespace...), global.NSTLS),
		listener:          listener,
		tlsConfig:         tlsConfig,
		Outbox:            outbox,
		displayTimestamps: displayTimestamps,
		maxLineSize:       maxLineSize,
		handshakeTimeout:  global.TLSHandshakeTimeout,
		clock:             time.Now,
		active:            make(map[net.Conn]struct{}),
	}
	return
}

// Accepts connections until the listener is closed or ctx is cancelled.
// Accept errors are logged and retried with a capped backoff.
// Returns after every connection handler has finished.
func (listener *Listener) Run(ctx context.Context) (err error) {
	ctx = logctx.OverwriteCtxTag(ctx, listener.Namespace)

	stopWatch := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stopWatch()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Listening for TLS connections on %s\n", listener.listener.Addr().String())

	var delay time.Duration
	for {
		conn, acceptErr := listener.listener.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil || errors.Is(acceptErr, net.ErrClosed) || listener.isClosing() {
				break
			}

			listener.Metrics.AcceptErrors.Add(1)
			delay = nextDelay(delay)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed accepting connection (retrying in %s): %v\n", delay.String(), acceptErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
			continue
		}
		delay = 0

		if !listener.track(conn) {
			conn.Close()
			break
		}
		listener.Metrics.Accepted.Add(1)

		go func() {
			defer listener.wg.Done()
			defer listener.untrack(conn)

			result := listener.handle(ctx, conn)
			listener.record(ctx, result)
		}()
	}

	// Handlers still running hold connections that Close already shut
	listener.closeActive()
	listener.wg.Wait()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "TLS listener stopped\n")
	return
}

// Stops accepting and closes every active connection
func (listener *Listener) Close() (err error) {
	listener.mutex.Lock()
	listener.closing = true
	listener.mutex.Unlock()

	err = listener.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	listener.closeActive()
	return
}

// Address the listener is bound to
func (listener *Listener) Addr() net.Addr {
	return listener.listener.Addr()
}

func (listener *Listener) isClosing() (closing bool) {
	listener.mutex.Lock()
	closing = listener.closing
	listener.mutex.Unlock()
	return
}

// Registers a connection for shutdown. Refused once closing has started.
func (listener *Listener) track(conn net.Conn) (ok bool) {
	listener.mutex.Lock()
	defer listener.mutex.Unlock()
	if listener.closing {
		return
	}
	listener.active[conn] = struct{}{}
	listener.wg.Add(1)
	listener.Metrics.Active.Add(1)
	ok = true
	return
}

func (listener *Listener) untrack(conn net.Conn) {
	listener.mutex.Lock()
	delete(listener.active, conn)
	listener.mutex.Unlock()
	listener.Metrics.Active.Add(-1)
}

func (listener *Listener) closeActive() {
	listener.mutex.Lock()
	for conn := range listener.active {
		conn.Close()
	}
	listener.mutex.Unlock()
}

func nextDelay(current time.Duration) (next time.Duration) {
	if current == 0 {
		next = global.AcceptRetryMin
		return
	}
	next = current * 2
	if next > global.AcceptRetryMax {
		next = global.AcceptRetryMax
	}
	return
}
