package queue

import (
	"github.com/pbnjay/memory"
)

// Fraction of total system memory used when the bound is derived automatically
const autoBoundDivisor uint64 = 4

// Translates the configured bound into bytes.
// -1 resolves to a quarter of total system memory (unbounded if memory cannot be determined).
func ResolveBound(configured int64) (maxBytes int64) {
	if configured >= 0 {
		maxBytes = configured
		return
	}

	total := memory.TotalMemory()
	if total == 0 {
		return
	}
	maxBytes = int64(total / autoBoundDivisor)
	return
}

// Ratio of queued bytes to currently free system memory (0 when unknown)
func (queue *MessageQueue) MemoryPressure() (ratio float64) {
	free := memory.FreeMemory()
	if free == 0 {
		return
	}
	ratio = float64(queue.Bytes()) / float64(free)
	return
}
