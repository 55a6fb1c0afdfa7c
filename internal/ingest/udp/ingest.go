// Plain UDP syslog ingestion
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"
	"syslogsrv/internal/message"
	"syslogsrv/internal/queue"
	"time"
)

func New(namespace []string, conn *net.UDPConn, outbox *queue.MessageQueue, displayTimestamps bool) (new *Instance) {
	new = &Instance{
		Namespace:         append(append([]string(nil), namespace...), global.NSUDP),
		conn:              conn,
		Outbox:            outbox,
		displayTimestamps: displayTimestamps,
		clock:             time.Now,
	}
	return
}

// Receives datagrams until the first receive error. The loop is never restarted.
// A closed socket or cancelled context is a clean stop (nil), anything else is returned.
func (instance *Instance) Run(ctx context.Context) (err error) {
	ctx = logctx.OverwriteCtxTag(ctx, instance.Namespace)

	instance.running.Store(true)
	defer instance.running.Store(false)

	buffer := make([]byte, global.UDPMaxDatagramSize)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Listening for datagrams on %s\n", instance.conn.LocalAddr().String())

	for {
		var stop bool
		stop, err = instance.receive(ctx, buffer)
		if stop {
			break
		}
	}

	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"UDP ingestion stopped permanently: %v\n", err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "UDP ingestion stopped\n")
	return
}

// Handles a single datagram. Panics are recorded and receiving continues.
func (instance *Instance) receive(ctx context.Context, buffer []byte) (stop bool, err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			instance.Metrics.Panics.Add(1)
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in udp receive loop: %v\n%s", fatalError, stack)
			stop = false
			err = nil
		}
	}()

	// Blocking until data arrives or the socket is closed
	length, remoteAddr, readErr := instance.conn.ReadFromUDP(buffer)
	if readErr != nil {
		stop = true
		if ctx.Err() != nil || errors.Is(readErr, net.ErrClosed) {
			return
		}
		err = fmt.Errorf("failed reading datagram: %w", readErr)
		return
	}

	instance.Metrics.Datagrams.Add(1)
	instance.Metrics.Bytes.Add(uint64(length))

	msg := message.New(message.Decode(buffer[:length]), instance.displayTimestamps, instance.clock())
	if !instance.Outbox.Append(msg) {
		instance.Metrics.Dropped.Add(1)
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Queue full, dropped datagram from %s\n", remoteAddr.String())
		return
	}

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "%s\n", msg)
	return
}

// Closes the socket, unblocking Run
func (instance *Instance) Close() (err error) {
	err = instance.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return
}

// Address the socket is bound to
func (instance *Instance) LocalAddr() net.Addr {
	return instance.conn.LocalAddr()
}

// Reports whether the receive loop is active
func (instance *Instance) Running() bool {
	return instance.running.Load()
}
