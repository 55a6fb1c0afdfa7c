package udp

import (
	"net"
	"sync/atomic"
	"syslogsrv/internal/queue"
	"time"
)

// Receives one message per datagram on a single bound socket
type Instance struct {
	Namespace         []string
	conn              *net.UDPConn
	Outbox            *queue.MessageQueue
	displayTimestamps bool
	clock             func() time.Time
	running           atomic.Bool
	Metrics           MetricStorage
}

type MetricStorage struct {
	Datagrams atomic.Uint64 // datagrams received
	Bytes     atomic.Uint64 // payload bytes received
	Dropped   atomic.Uint64 // messages rejected by the queue bound
	Panics    atomic.Uint64 // recovered panics in the receive loop
}
