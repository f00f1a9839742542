package ports

import "github.com/aharivel/power-measurement-toolkit/internal/domain"

type Sink interface {
	// WriteAll persists the completed series in order. Called once at
	// finalize with every non-priming tick collected during the run.
	WriteAll(samples []domain.Sample) error
	Name() string
}

// StreamSink additionally receives each sample as it is produced. The
// console output implements this; file sinks do not (output is flushed once
// at run completion).
type StreamSink interface {
	Sink
	WriteOne(s domain.Sample) error
}
