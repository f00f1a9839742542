package domain

import "time"

// Source identifies which telemetry path produced a power reading.
type Source string

const (
	// SourceOutOfBand is the management-controller (IPMI DCMI) reading.
	SourceOutOfBand Source = "oob"
	// SourceOnChipEnergy is the power value derived from the RAPL energy counter.
	SourceOnChipEnergy Source = "onchip"
)

// DefaultCounterWidth is the assumed width of the RAPL energy accumulator in
// microjoules. The real width is hardware-dependent and not introspected at
// runtime, so rollover correction based on this value is approximate.
const DefaultCounterWidth uint64 = 1 << 32

// EnergySample is one raw read of the monotonic energy accumulator. ReadAt
// carries Go's monotonic clock reading, which is what delta computations use.
type EnergySample struct {
	EnergyMicrojoules uint64
	ReadAt            time.Time
}

// PowerReading is a single instantaneous or average power value in Watts.
type PowerReading struct {
	Watts  float64 `json:"watts"`
	Source Source  `json:"source"`
}

// Sample is the canonical unit of telemetry, produced once per sampling tick.
// Optional fields are nil when the corresponding source failed or could not
// yet yield a value for that tick.
type Sample struct {
	Timestamp            string        `json:"ts"`
	TimestampUnix        float64       `json:"ts_unix"`
	OOBPower             *PowerReading `json:"oob_power,omitempty"`
	OnChipPower          *PowerReading `json:"onchip_power,omitempty"`
	RawEnergyMicrojoules *uint64       `json:"raw_energy_uj,omitempty"`
}

// TimestampLayout is the wall-clock format recorded in each Sample,
// millisecond resolution.
const TimestampLayout = "2006-01-02 15:04:05.000"

// NewSample stamps a Sample with the given wall-clock time. Readings are
// filled in by the collector afterwards.
func NewSample(now time.Time) Sample {
	return Sample{
		Timestamp:     now.Format(TimestampLayout),
		TimestampUnix: float64(now.UnixNano()) / 1e9,
	}
}
