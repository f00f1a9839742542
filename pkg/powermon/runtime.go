package powermon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aharivel/power-measurement-toolkit/internal/adapters/buffer"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/ipmi"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/journal"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/observability"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/rapl"
	"github.com/aharivel/power-measurement-toolkit/internal/adapters/sink"
	"github.com/aharivel/power-measurement-toolkit/internal/app/collector"
	"github.com/aharivel/power-measurement-toolkit/internal/app/estimator"
	"github.com/aharivel/power-measurement-toolkit/internal/app/monitor"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	energy        EnergyCounterReader
	oob           OutOfBandPowerReader
	sinks         []Sink
	stream        StreamSink
	buffer        SampleBuffer
	journal       Journal
	observability Observability
}

// WithEnergyReader injects a custom energy counter source (AMD RAPL zones,
// hwmon, simulators).
func WithEnergyReader(r EnergyCounterReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.energy = r }
}

// WithPowerReader injects a custom out-of-band source (Redfish, a different
// BMC tool, simulators).
func WithPowerReader(r OutOfBandPowerReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.oob = r }
}

// WithSink appends an extra sink alongside the configured ones.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithStream overrides the per-tick stream destination.
func WithStream(s StreamSink) RuntimeOption {
	return func(o *runtimeOverrides) { o.stream = s }
}

// WithBuffer replaces the default bounded in-memory buffer.
func WithBuffer(b SampleBuffer) RuntimeOption {
	return func(o *runtimeOverrides) { o.buffer = b }
}

// WithJournal lets callers bring their own journal implementation.
func WithJournal(j Journal) RuntimeOption {
	return func(o *runtimeOverrides) { o.journal = j }
}

// WithObservability plugs in a custom metrics/logging backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.observability = obs }
}

// Runtime wires the reader → estimator → buffer → sink pipeline and exposes
// lifecycle hooks for embedding the monitor inside another Go service.
type Runtime struct {
	cfg        *Config
	loop       *monitor.Loop
	obs        ports.Observability
	registry   *prometheus.Registry
	db         *sql.DB
	metricsSrv *http.Server
}

// NewRuntime bootstraps the default adapters (sysfs RAPL reader, ipmitool
// reader, bounded buffer, CSV/console sinks, Prometheus observability).
// RuntimeOption values override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	var registry *prometheus.Registry
	if obs == nil {
		promObs, reg := observability.NewPromObs(!cfg.Sampling.Quiet)
		obs = promObs
		registry = reg
	}

	energy := overrides.energy
	if energy == nil {
		energy = rapl.NewReader(cfg.RAPL.EnergyPath)
	}
	oob := overrides.oob
	if oob == nil {
		oob = ipmi.NewReader(cfg.IPMI.Tool, cfg.IPMI.Args, cfg.IPMI.Timeout.Std())
	}

	est := &estimator.Estimator{CounterWidth: cfg.Estimator.CounterWidthUJ}
	col := collector.New(oob, energy, est, obs)

	buf := overrides.buffer
	if buf == nil {
		buf = buffer.NewMemBuffer(cfg.Sampling.BufferCap)
	}

	sinks := overrides.sinks
	var db *sql.DB
	if cfg.Output.CSVPath != "" {
		sinks = append(sinks, sink.NewCSVSink(cfg.Output.CSVPath))
	}
	if cfg.Archive.ConnString != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Archive.ConnString)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink.NewTimescaleSink(db, cfg.Archive.Table))
	}
	if cfg.SQLite.Path != "" {
		sq, err := sink.NewSQLiteSink(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sq)
	}

	loopOpts := []monitor.Option{monitor.WithDuration(cfg.Sampling.Duration.Std())}

	stream := overrides.stream
	if stream == nil && !cfg.Sampling.Quiet {
		stream = sink.NewConsoleSink(os.Stdout)
	}
	if stream != nil {
		loopOpts = append(loopOpts, monitor.WithStream(stream))
	}

	jrnl := overrides.journal
	if jrnl == nil && cfg.Journal.Dir != "" {
		var err error
		jrnl, err = journal.NewFileJournal(cfg.Journal.Dir)
		if err != nil {
			return nil, err
		}
	}
	if jrnl != nil {
		loopOpts = append(loopOpts, monitor.WithJournal(jrnl))
	}

	loop := monitor.New(col, buf, sinks, obs, cfg.Sampling.Interval.Std(), loopOpts...)

	return &Runtime{
		cfg:      cfg,
		loop:     loop,
		obs:      obs,
		registry: registry,
		db:       db,
	}, nil
}

// Validate runs the startup interface checks (energy counter readable, tool
// on PATH) without taking any sample.
func (r *Runtime) Validate() error {
	return r.loop.Validate()
}

// Run executes the monitoring loop until the duration elapses or ctx is
// cancelled, then shuts down auxiliary resources. An interrupted run is not
// an error; the returned Summary says whether it was cut short.
func (r *Runtime) Run(ctx context.Context) (Summary, error) {
	r.startMetrics()

	summary, err := r.loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := r.shutdown(shutdownCtx); cerr != nil {
		r.obs.LogError("runtime_shutdown", cerr)
	}

	return summary, err
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" || r.registry == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}

func (r *Runtime) shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
