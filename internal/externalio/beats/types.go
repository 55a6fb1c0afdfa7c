package beats

import (
	"sync"
	"time"
)

// Subset of the lumberjack client used by the mirror
type sender interface {
	Send(events []interface{}) (int, error)
	Close() error
}

// Mirrors flushed batches to a lumberjack (Beats) endpoint
type OutModule struct {
	endpoint string
	timeout  time.Duration
	hostname string
	dial     func(endpoint string, timeout time.Duration) (sender, error)

	mutex sync.Mutex
	sink  sender // nil until connected or after a failed send
}
