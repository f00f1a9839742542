package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// Header is the fixed column layout of the persisted series.
var Header = []string{"timestamp", "timestamp_unix", "ipmi_watts", "rapl_pkg_watts", "rapl_energy_uj"}

// CSVSink writes the whole series to a file once at run completion. Absent
// readings become empty cells; the file is only complete after the process
// has exited.
type CSVSink struct {
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (c *CSVSink) Name() string { return "csv" }

func (c *CSVSink) WriteAll(samples []domain.Sample) error {
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	for _, s := range samples {
		if err := w.Write(Row(s)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Row renders one sample as CSV cells in Header order.
func Row(s domain.Sample) []string {
	return []string{
		s.Timestamp,
		strconv.FormatFloat(s.TimestampUnix, 'f', -1, 64),
		formatWatts(s.OOBPower),
		formatWatts(s.OnChipPower),
		formatEnergy(s.RawEnergyMicrojoules),
	}
}

func formatWatts(r *domain.PowerReading) string {
	if r == nil {
		return ""
	}
	return strconv.FormatFloat(r.Watts, 'f', -1, 64)
}

func formatEnergy(e *uint64) string {
	if e == nil {
		return ""
	}
	return strconv.FormatUint(*e, 10)
}

var _ ports.Sink = (*CSVSink)(nil)
