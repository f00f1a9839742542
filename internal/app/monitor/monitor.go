// Package monitor drives the periodic sampling loop: prime the estimator,
// sample at a fixed nominal interval for a bounded or unbounded window, and
// flush the collected series on every exit path.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/app/estimator"
	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// SampleSource is the single collaborator the loop samples from. Satisfied
// by collector.Collector.
type SampleSource interface {
	Validate() error
	Collect(ctx context.Context, state *estimator.State) domain.Sample
}

// Summary describes a finished run.
type Summary struct {
	Samples     int
	Dropped     int
	Interrupted bool
}

type Loop struct {
	source   SampleSource
	buffer   ports.SampleBuffer
	journal  ports.Journal // optional
	stream   ports.StreamSink
	sinks    []ports.Sink
	obs      ports.Observability
	interval time.Duration
	duration time.Duration // 0 means unbounded

	state        estimator.State
	finalizeOnce sync.Once
	summary      Summary
}

type Option func(*Loop)

// WithStream attaches a per-tick stream sink (the console). Absent in quiet
// mode.
func WithStream(s ports.StreamSink) Option {
	return func(l *Loop) { l.stream = s }
}

// WithJournal records each completed tick on disk so an unclean exit cannot
// lose the series.
func WithJournal(j ports.Journal) Option {
	return func(l *Loop) { l.journal = j }
}

// WithDuration bounds the sampling window, measured from the end of the
// priming round. Zero keeps the loop running until cancelled.
func WithDuration(d time.Duration) Option {
	return func(l *Loop) { l.duration = d }
}

func New(source SampleSource, buf ports.SampleBuffer, sinks []ports.Sink, obs ports.Observability, interval time.Duration, opts ...Option) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	l := &Loop{
		source:   source,
		buffer:   buf,
		sinks:    sinks,
		obs:      obs,
		interval: interval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Validate runs the startup interface checks without sampling anything.
func (l *Loop) Validate() error {
	return l.source.Validate()
}

// Run validates the interfaces, primes the estimator, then samples until the
// duration elapses or ctx is cancelled. Finalize (sink flush, journal
// truncate) happens exactly once on every exit path; an interrupted run
// still persists all ticks completed before the interrupt. The returned
// Summary is valid even on early exit.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	if err := l.source.Validate(); err != nil {
		return Summary{}, err
	}

	// Priming round: seeds the estimator state and is discarded from the
	// persisted series. It does not consume the sampling window, so a
	// 5s/1s run still yields the expected number of rows.
	l.source.Collect(ctx, &l.state)
	l.obs.LogInfo("priming_reading_taken")

	start := time.Now()
	for {
		if ctx.Err() != nil {
			l.summary.Interrupted = true
			break
		}
		if l.duration > 0 && time.Since(start) >= l.duration {
			break
		}

		tickStart := time.Now()
		sample := l.source.Collect(ctx, &l.state)
		l.obs.ObserveLatency("powermon_collect_latency_seconds", time.Since(tickStart).Seconds())

		l.buffer.Append(sample)
		l.obs.IncCounter("powermon_ticks_total", 1)
		l.obs.SetGauge("powermon_buffer_length", float64(l.buffer.Len()))

		if l.journal != nil {
			if _, err := l.journal.Append(sample); err != nil {
				l.obs.LogCritical("journal_append_failed", err)
			}
		}
		if l.stream != nil {
			if err := l.stream.WriteOne(sample); err != nil {
				l.obs.LogError("stream_write_failed", err)
			}
		}

		// Sleep for what is left of the nominal interval. A tick that ran
		// long fires the next one immediately; there is no catch-up burst.
		if !l.sleepRemaining(ctx, tickStart) {
			l.summary.Interrupted = true
			break
		}
	}

	l.finalize()
	return l.summary, nil
}

// sleepRemaining suspends until the next tick boundary and reports false if
// cancellation arrived first.
func (l *Loop) sleepRemaining(ctx context.Context, tickStart time.Time) bool {
	remaining := l.interval - time.Since(tickStart)
	if remaining <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loop) finalize() {
	l.finalizeOnce.Do(func() {
		series := l.buffer.Snapshot()
		l.summary.Samples = len(series)
		l.summary.Dropped = l.buffer.Dropped()
		if l.summary.Dropped > 0 {
			l.obs.IncCounter("powermon_samples_dropped_total", float64(l.summary.Dropped))
		}

		for _, s := range l.sinks {
			if err := s.WriteAll(series); err != nil {
				// One sink failing must not keep the others from flushing.
				l.obs.LogCritical("sink_flush_failed", err, ports.Field{Key: "sink", Value: s.Name()})
			}
		}

		if l.journal != nil {
			if err := l.journal.Truncate(); err != nil {
				l.obs.LogError("journal_truncate_failed", err)
			}
			if err := l.journal.Close(); err != nil {
				l.obs.LogError("journal_close_failed", err)
			}
		}

		l.obs.LogInfo("monitoring_complete")
	})
}
