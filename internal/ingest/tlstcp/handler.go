package tlstcp

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/message"
	"time"
)

// Runs one connection through handshake and line streaming.
// The socket is released on every path.
func (listener *Listener) handle(ctx context.Context, conn net.Conn) (result Result) {
	start := time.Now()
	result.Remote = conn.RemoteAddr().String()
	result.State = Accepted

	ctx = logctx.AppendCtxTag(ctx, result.Remote)

	tlsConn := tls.Server(conn, listener.tlsConfig)
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in connection handler: %v\n%s", fatalError, stack)
			result.State = Failed
			if result.Stage == StageNone {
				result.Stage = StageStream
			}
			result.Err = fmt.Errorf("handler panic: %v", fatalError)
		}
		tlsConn.Close()
		result.Duration = time.Since(start)
	}()

	result.State = Handshaking
	hsCtx, cancel := context.WithTimeout(ctx, listener.handshakeTimeout)
	err := tlsConn.HandshakeContext(hsCtx)
	cancel()
	if err != nil {
		result.State = Failed
		result.Stage = StageHandshake
		result.Err = fmt.Errorf("tls handshake failed: %w", err)
		return
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) > 0 {
		result.Peer = state.PeerCertificates[0].Subject.String()
	}
	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
		"Handshake complete (version %s, peer %q)\n", tls.VersionName(state.Version), result.Peer)

	result.State = Streaming
	err = listener.stream(ctx, tlsConn, &result)
	if err != nil {
		if errors.Is(err, net.ErrClosed) && listener.isClosing() {
			result.State = Closed
			return
		}
		result.State = Failed
		result.Stage = StageStream
		result.Err = err
		return
	}
	result.State = Closed
	return
}

// Reads newline-delimited lines and enqueues each in read order.
// The final unterminated line is delivered at EOF.
func (listener *Listener) stream(ctx context.Context, conn *tls.Conn, result *Result) (err error) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(4096, listener.maxLineSize)), listener.maxLineSize)

	for scanner.Scan() {
		text := message.TrimLineEnding(message.Decode(scanner.Bytes()))
		msg := message.New(text, listener.displayTimestamps, listener.clock())

		if !listener.Outbox.Append(msg) {
			listener.Metrics.Dropped.Add(1)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Queue full, dropped line\n")
			continue
		}
		result.Lines++
		listener.Metrics.Lines.Add(1)
		listener.Metrics.Bytes.Add(uint64(len(msg)))

		logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "%s\n", msg)
	}

	err = scanner.Err()
	if err != nil {
		err = fmt.Errorf("failed reading stream: %w", err)
	}
	return
}

// Turns a connection result into metrics and a log line
func (listener *Listener) record(ctx context.Context, result Result) {
	ctx = logctx.AppendCtxTag(ctx, result.Remote)

	switch {
	case result.State == Closed:
		listener.Metrics.CleanCloses.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Connection closed after %d lines (%s)\n", result.Lines, result.Duration.String())
	case result.Stage == StageHandshake:
		listener.Metrics.HandshakeFailures.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Connection failed: %v\n", result.Err)
	default:
		listener.Metrics.StreamErrors.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Connection failed after %d lines: %v\n", result.Lines, result.Err)
	}
}
