package queue

import (
	"sync"
	"sync/atomic"
)

// Unbounded (or byte-bounded) FIFO of received messages shared by all producers and the writer
type MessageQueue struct {
	Namespace []string
	mutex     sync.Mutex
	items     []string
	bytes     int64
	maxBytes  int64 // 0 = unbounded
	Metrics   MetricStorage
}

type MetricStorage struct {
	Appended atomic.Uint64 // messages accepted
	Dropped  atomic.Uint64 // messages rejected by the byte bound
	Drained  atomic.Uint64 // messages handed to the writer
	Requeued atomic.Uint64 // messages returned after a failed flush
	Drains   atomic.Uint64 // drain calls
}
