package webhook

import (
	"sync"

	"github.com/corelens/rca-engine/internal/events"
	"github.com/corelens/rca-engine/internal/rcaconst"
)

// ringBuffer is a bounded, thread-safe FIFO of verified webhook
// records. When full, Push drops the oldest
// rcaconst.WebhookRingBufferDropFraction of entries at once to make
// room, rather than dropping exactly one per overflow.
type ringBuffer struct {
	mu       sync.Mutex
	entries  []events.RawRecord
	capacity int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity <= 0 {
		capacity = rcaconst.WebhookRingBufferSize
	}
	return &ringBuffer{capacity: capacity}
}

// Push appends rec, dropping the oldest entries first if the buffer
// is at capacity.
func (b *ringBuffer) Push(rec events.RawRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.capacity {
		drop := int(float64(b.capacity) * rcaconst.WebhookRingBufferDropFraction)
		if drop < 1 {
			drop = 1
		}
		if drop > len(b.entries) {
			drop = len(b.entries)
		}
		b.entries = append([]events.RawRecord{}, b.entries[drop:]...)
	}
	b.entries = append(b.entries, rec)
}

// Pop removes and returns the oldest entry, if any.
func (b *ringBuffer) Pop() (events.RawRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return nil, false
	}
	rec := b.entries[0]
	b.entries = b.entries[1:]
	return rec, true
}

// Len reports the number of buffered entries.
func (b *ringBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
