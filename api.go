package powermon

import (
	base "github.com/aharivel/power-measurement-toolkit/pkg/powermon"
)

// Re-exported errors for convenience.
var ErrChannelSinkClosed = base.ErrChannelSinkClosed

// Type aliases so consumers can import the module root directly.
type (
	Config               = base.Config
	Duration             = base.Duration
	SamplingConfig       = base.SamplingConfig
	RAPLConfig           = base.RAPLConfig
	IPMIConfig           = base.IPMIConfig
	EstimatorConfig      = base.EstimatorConfig
	OutputConfig         = base.OutputConfig
	ArchiveConfig        = base.ArchiveConfig
	SQLiteConfig         = base.SQLiteConfig
	JournalConfig        = base.JournalConfig
	MetricsConfig        = base.MetricsConfig
	Runtime              = base.Runtime
	RuntimeOption        = base.RuntimeOption
	Sample               = base.Sample
	PowerReading         = base.PowerReading
	EnergySample         = base.EnergySample
	Summary              = base.Summary
	SeriesSink           = base.SeriesSink
	EnergyCounterReader  = base.EnergyCounterReader
	OutOfBandPowerReader = base.OutOfBandPowerReader
	Sink                 = base.Sink
	StreamSink           = base.StreamSink
	SampleBuffer         = base.SampleBuffer
	Journal              = base.Journal
	Observability        = base.Observability
	Field                = base.Field
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithEnergyReader(r EnergyCounterReader) RuntimeOption {
	return base.WithEnergyReader(r)
}

func WithPowerReader(r OutOfBandPowerReader) RuntimeOption {
	return base.WithPowerReader(r)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithStream(s StreamSink) RuntimeOption {
	return base.WithStream(s)
}

func WithBuffer(b SampleBuffer) RuntimeOption {
	return base.WithBuffer(b)
}

func WithJournal(j Journal) RuntimeOption {
	return base.WithJournal(j)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Sink adapters.
func NewCallbackSink(name string, fn SeriesSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []Sample, func()) {
	return base.NewChannelSink(name, buffer)
}
