package ports

import "github.com/aharivel/power-measurement-toolkit/internal/domain"

type JournalEntryID uint64

// Journal is an optional crash-safe record of completed ticks. Each finished
// sample is appended as it is produced; after the series has been flushed to
// its sinks the journal is truncated. If a run dies before finalize, the
// journal still holds every completed tick.
type Journal interface {
	Append(s domain.Sample) (JournalEntryID, error)
	Iterate(from JournalEntryID, fn func(id JournalEntryID, s domain.Sample) error) error
	Truncate() error
	Stats() JournalStats
	Close() error
}

type JournalStats struct {
	LatestAppended JournalEntryID
	SizeBytes      int64
}
