// In-memory message buffer between ingestors and the batch writer.
// Appends never block on I/O and Drain detaches the whole buffer in one swap.
package queue

import (
	"syslogsrv/internal/global"
)

// Creates a new queue. maxBytes <= 0 means unbounded.
func New(namespace []string, maxBytes int64) (new *MessageQueue) {
	if maxBytes < 0 {
		maxBytes = 0
	}
	new = &MessageQueue{
		Namespace: append(append([]string(nil), namespace...), global.NSQueue),
		items:     make([]string, 0),
		maxBytes:  maxBytes,
	}
	return
}

// Adds msg at the tail. Returns false only when a byte bound is set and msg does not fit;
// the newest message is the one rejected.
func (queue *MessageQueue) Append(msg string) (accepted bool) {
	size := int64(len(msg))

	queue.mutex.Lock()
	if queue.maxBytes > 0 && queue.bytes+size > queue.maxBytes {
		queue.mutex.Unlock()
		queue.Metrics.Dropped.Add(1)
		return
	}
	queue.items = append(queue.items, msg)
	queue.bytes += size
	queue.mutex.Unlock()

	queue.Metrics.Appended.Add(1)
	accepted = true
	return
}

// Detaches and returns everything queued so far, leaving a fresh empty buffer.
// Messages appended concurrently land either in the returned batch or in the next one.
func (queue *MessageQueue) Drain() (batch []string) {
	queue.mutex.Lock()
	batch = queue.items
	queue.items = make([]string, 0, len(batch))
	queue.bytes = 0
	queue.mutex.Unlock()

	queue.Metrics.Drains.Add(1)
	queue.Metrics.Drained.Add(uint64(len(batch)))
	return
}

// Puts a previously drained batch back in front of anything appended since.
// Ignores the byte bound: these messages were already accepted.
func (queue *MessageQueue) Requeue(batch []string) {
	if len(batch) == 0 {
		return
	}

	var size int64
	for _, msg := range batch {
		size += int64(len(msg))
	}

	queue.mutex.Lock()
	merged := make([]string, 0, len(batch)+len(queue.items))
	merged = append(merged, batch...)
	merged = append(merged, queue.items...)
	queue.items = merged
	queue.bytes += size
	queue.mutex.Unlock()

	queue.Metrics.Requeued.Add(uint64(len(batch)))
}

// Current number of queued messages
func (queue *MessageQueue) Len() (depth int) {
	queue.mutex.Lock()
	depth = len(queue.items)
	queue.mutex.Unlock()
	return
}

// Current byte sum of queued messages
func (queue *MessageQueue) Bytes() (size int64) {
	queue.mutex.Lock()
	size = queue.bytes
	queue.mutex.Unlock()
	return
}

// Configured byte bound (0 = unbounded)
func (queue *MessageQueue) MaxBytes() int64 {
	return queue.maxBytes
}
