package tlstcp

import (
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"syslogsrv/internal/queue"
	"time"
)

// Connection lifecycle position
type State int

const (
	Accepted State = iota
	Handshaking
	Streaming
	Closed // peer finished cleanly
	Failed // handshake or stream error
)

func (state State) String() string {
	switch state {
	case Accepted:
		return "accepted"
	case Handshaking:
		return "handshaking"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Where a failed connection stopped
type Stage string

const (
	StageNone      Stage = ""
	StageHandshake Stage = "handshake"
	StageStream    Stage = "stream"
)

// Outcome of one connection, consumed by metrics and logging only
type Result struct {
	Remote   string
	Peer     string // client certificate subject, if one was presented
	State    State
	Stage    Stage
	Lines    int
	Err      error
	Duration time.Duration
}

// Accepts TLS connections and runs one handler goroutine per connection
type Listener struct {
	Namespace         []string
	listener          net.Listener
	tlsConfig         *tls.Config // shared, read-only
	Outbox            *queue.MessageQueue
	displayTimestamps bool
	maxLineSize       int
	handshakeTimeout  time.Duration
	clock             func() time.Time

	mutex   sync.Mutex
	active  map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup

	Metrics MetricStorage
}

type MetricStorage struct {
	Accepted          atomic.Uint64 // connections accepted
	AcceptErrors      atomic.Uint64 // accept failures (loop continues)
	HandshakeFailures atomic.Uint64 // connections failed during handshake
	StreamErrors      atomic.Uint64 // connections failed while streaming
	CleanCloses       atomic.Uint64 // connections closed by peer
	Lines             atomic.Uint64 // lines enqueued
	Bytes             atomic.Uint64 // line bytes enqueued
	Dropped           atomic.Uint64 // lines rejected by the queue bound
	Active            atomic.Int64  // currently open connections
}
