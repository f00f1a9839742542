package sink

import (
	"fmt"
	"io"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// ConsoleSink streams one line per tick to the operator.
type ConsoleSink struct {
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (c *ConsoleSink) Name() string { return "console" }

func (c *ConsoleSink) WriteOne(s domain.Sample) error {
	_, err := fmt.Fprintf(c.out, "[%s] IPMI: %10s | RAPL Package: %10s\n",
		s.Timestamp, consoleWatts(s.OOBPower), consoleWatts(s.OnChipPower))
	return err
}

// WriteAll is a no-op: the console already saw every tick as it happened.
func (c *ConsoleSink) WriteAll([]domain.Sample) error { return nil }

func consoleWatts(r *domain.PowerReading) string {
	if r == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2fW", r.Watts)
}

var _ ports.StreamSink = (*ConsoleSink)(nil)
