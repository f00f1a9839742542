package powermon

import (
	"github.com/aharivel/power-measurement-toolkit/internal/app/config"
	"github.com/aharivel/power-measurement-toolkit/internal/app/monitor"
	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// Config re-exports the root configuration struct so embedding projects can
// construct or modify it programmatically.
type Config = config.Config

// Duration is the YAML-friendly duration used in Config fields.
type Duration = config.Duration

type (
	// SamplingConfig controls interval, duration, and buffering.
	SamplingConfig = config.SamplingConfig
	// RAPLConfig locates the energy counter.
	RAPLConfig = config.RAPLConfig
	// IPMIConfig describes the out-of-band tool invocation.
	IPMIConfig = config.IPMIConfig
	// EstimatorConfig overrides the assumed counter width.
	EstimatorConfig = config.EstimatorConfig
	// OutputConfig configures the CSV sink.
	OutputConfig = config.OutputConfig
	// ArchiveConfig configures the Postgres/Timescale sink.
	ArchiveConfig = config.ArchiveConfig
	// SQLiteConfig configures the local sqlite archive.
	SQLiteConfig = config.SQLiteConfig
	// JournalConfig configures the on-disk tick journal.
	JournalConfig = config.JournalConfig
	// MetricsConfig configures the optional metrics endpoint.
	MetricsConfig = config.MetricsConfig
)

// Sample is one finished sampling tick.
type Sample = domain.Sample

// PowerReading is a single power value attributed to its source.
type PowerReading = domain.PowerReading

// EnergySample is a raw accumulator read.
type EnergySample = domain.EnergySample

// Summary describes a completed run.
type Summary = monitor.Summary

type (
	// EnergyCounterReader reads the raw monotonic accumulator.
	EnergyCounterReader = ports.EnergyCounterReader
	// OutOfBandPowerReader obtains the management-controller reading.
	OutOfBandPowerReader = ports.OutOfBandPowerReader
	// Sink consumes the finished series at run completion.
	Sink = ports.Sink
	// StreamSink additionally receives each tick as it happens.
	StreamSink = ports.StreamSink
	// SampleBuffer is the in-memory series owned by the loop.
	SampleBuffer = ports.SampleBuffer
	// Journal is the optional crash-safe tick record.
	Journal = ports.Journal
	// Observability emits metrics and operator-facing warnings.
	Observability = ports.Observability
	// Field is a structured log field used by Observability implementations.
	Field = ports.Field
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the flag-driven defaults used when no config file is
// given.
func DefaultConfig() *Config {
	return config.Default()
}
