// Listening sockets for the collector transports
package network

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// Socket options applied before bind
type SocketOptions struct {
	ReuseAddr bool // SO_REUSEADDR, quick rebinding after restart
	ReusePort bool // SO_REUSEPORT, allow a replacement process to bind alongside
}

// Defaults for collector listeners
var DefaultOptions = SocketOptions{ReuseAddr: true}

func (opts SocketOptions) control(network, address string, c syscall.RawConn) (err error) {
	ctrlErr := c.Control(func(fd uintptr) {
		if opts.ReuseAddr {
			err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			if err != nil {
				err = fmt.Errorf("failed setting SO_REUSEADDR: %w", err)
				return
			}
		}
		if opts.ReusePort {
			err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			if err != nil {
				err = fmt.Errorf("failed setting SO_REUSEPORT: %w", err)
				return
			}
		}
	})
	if ctrlErr != nil {
		err = ctrlErr
	}
	return
}

// Binds a UDP socket on all interfaces at port (0 = ephemeral)
func ListenUDP(ctx context.Context, port int, opts SocketOptions) (conn *net.UDPConn, err error) {
	cfg := net.ListenConfig{Control: opts.control}

	pc, err := cfg.ListenPacket(ctx, "udp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		err = fmt.Errorf("failed to bind udp port %d: %w", port, err)
		return
	}
	conn = pc.(*net.UDPConn)
	return
}

// Binds and listens on a TCP socket on all interfaces at port (0 = ephemeral)
func ListenTCP(ctx context.Context, port int, opts SocketOptions) (listener net.Listener, err error) {
	cfg := net.ListenConfig{Control: opts.control}

	listener, err = cfg.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		err = fmt.Errorf("failed to listen on tcp port %d: %w", port, err)
		return
	}
	return
}

// Port a listener or packet conn ended up bound to
func BoundPort(addr net.Addr) (port int) {
	switch typed := addr.(type) {
	case *net.UDPAddr:
		port = typed.Port
	case *net.TCPAddr:
		port = typed.Port
	}
	return
}
