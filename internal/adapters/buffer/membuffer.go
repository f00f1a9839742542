package buffer

import (
	"sync"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// MemBuffer is a bounded in-memory sample series that preserves arrival
// order. When an unbounded run fills the buffer, the oldest samples are
// evicted so the most recent window survives; evictions are counted.
type MemBuffer struct {
	mu      sync.Mutex
	data    []domain.Sample
	cap     int
	dropped int
}

// DefaultCapacity covers several days at a one-second interval.
const DefaultCapacity = 500_000

func NewMemBuffer(capacity int) *MemBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemBuffer{
		data: make([]domain.Sample, 0, min(capacity, 4096)),
		cap:  capacity,
	}
}

func (b *MemBuffer) Append(s domain.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) >= b.cap {
		b.data = b.data[1:]
		b.dropped++
	}
	b.data = append(b.data, s)
}

// Snapshot returns a copy of the buffered series in arrival order.
func (b *MemBuffer) Snapshot() []domain.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Sample, len(b.data))
	copy(out, b.data)
	return out
}

func (b *MemBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *MemBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ ports.SampleBuffer = (*MemBuffer)(nil)
