package logctx

import (
	"sync"
	"time"
)

// Single log record
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

// Buffered event logger shared through context
type Logger struct {
	ID         string
	CreatedAt  time.Time
	Done       <-chan struct{}
	PrintLevel int // Highest verbosity level that is recorded
	MaxQueue   int // Oldest events are discarded past this many buffered events (0 = no limit)

	queue   []Event
	dropped uint64     // events discarded due to MaxQueue
	mutex   sync.Mutex // protects queue, dropped, PrintLevel
	cond    *sync.Cond // signals new events to watcher
	wg      *sync.WaitGroup
}
