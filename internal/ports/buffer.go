package ports

import "github.com/aharivel/power-measurement-toolkit/internal/domain"

// SampleBuffer is the append-only series owned by the monitor loop for the
// duration of a run. Bounded implementations may evict the oldest entries on
// unbounded runs; Dropped reports how many were lost that way.
type SampleBuffer interface {
	Append(s domain.Sample)
	Snapshot() []domain.Sample
	Len() int
	Dropped() int
}
