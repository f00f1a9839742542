package observability

import (
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// Metric names exposed by PromObs.
const (
	MetricTicksTotal         = "powermon_ticks_total"
	MetricDegradedOOBTotal   = "powermon_degraded_oob_reads_total"
	MetricDegradedRAPLTotal  = "powermon_degraded_rapl_reads_total"
	MetricSamplesDropped     = "powermon_samples_dropped_total"
	MetricLastIPMIWatts      = "powermon_last_ipmi_watts"
	MetricLastRAPLWatts      = "powermon_last_rapl_watts"
	MetricBufferLength       = "powermon_buffer_length"
	MetricCollectLatencySecs = "powermon_collect_latency_seconds"
)

type PromObs struct {
	verbose  bool
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the monitor's metrics on a fresh registry and returns
// both. Using a private registry keeps repeated runs in one process (and
// tests) from colliding on MustRegister.
func NewPromObs(verbose bool) (*PromObs, *prometheus.Registry) {
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricTicksTotal,
		Help: "Completed sampling ticks, priming round excluded.",
	})
	degradedOOB := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricDegradedOOBTotal,
		Help: "Ticks where the out-of-band power read failed.",
	})
	degradedRAPL := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricDegradedRAPLTotal,
		Help: "Ticks where the energy counter read failed.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSamplesDropped,
		Help: "Samples evicted from the bounded buffer on unbounded runs.",
	})
	lastIPMI := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLastIPMIWatts,
		Help: "Most recent out-of-band power reading.",
	})
	lastRAPL := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricLastRAPLWatts,
		Help: "Most recent power estimate derived from the energy counter.",
	})
	bufLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: MetricBufferLength,
		Help: "Samples currently buffered in memory.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricCollectLatencySecs,
		Help:    "Wall time spent collecting one tick from both sources.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(ticks, degradedOOB, degradedRAPL, dropped, lastIPMI, lastRAPL, bufLen, latency)

	return &PromObs{
		verbose: verbose,
		counters: map[string]prometheus.Counter{
			MetricTicksTotal:        ticks,
			MetricDegradedOOBTotal:  degradedOOB,
			MetricDegradedRAPLTotal: degradedRAPL,
			MetricSamplesDropped:    dropped,
		},
		gauges: map[string]prometheus.Gauge{
			MetricLastIPMIWatts: lastIPMI,
			MetricLastRAPLWatts: lastRAPL,
			MetricBufferLength:  bufLen,
		},
		histos: map[string]prometheus.Observer{
			MetricCollectLatencySecs: latency,
		},
	}, reg
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	if p.verbose {
		log.Printf("INFO: %s%s", msg, renderFields(fields))
	}
}

// LogError records degraded-tick warnings. Quiet runs suppress them; a
// degraded read never interrupts the loop either way.
func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if p.verbose && err != nil {
		log.Printf("WARNING: %s: %v%s", msg, err, renderFields(fields))
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, renderFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func renderFields(fields []ports.Field) string {
	out := ""
	for _, f := range fields {
		out += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
