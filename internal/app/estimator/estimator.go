// Package estimator converts successive reads of a monotonically increasing
// energy accumulator into average power over the interval between them.
package estimator

import (
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

// State holds the previous accumulator reading for delta computation.
// Exactly one State exists per monitoring run and it is mutated only by
// Estimate on the single sampling path. Invariant: prevEnergy and prevTime
// are both set or both unset.
type State struct {
	prevEnergy *uint64
	prevTime   time.Time
}

// Seeded reports whether the state already holds a previous reading.
func (s *State) Seeded() bool {
	return s.prevEnergy != nil
}

func (s *State) store(sample domain.EnergySample) {
	e := sample.EnergyMicrojoules
	s.prevEnergy = &e
	s.prevTime = sample.ReadAt
}

// Estimator derives Watts from energy deltas. CounterWidth is the assumed
// accumulator width in microjoules used for rollover correction; the true
// width varies by platform and is not queried, so a corrected value after a
// wrap is an approximation, not a guaranteed unwrap.
type Estimator struct {
	CounterWidth uint64
}

// New returns an Estimator with the default assumed counter width.
func New() *Estimator {
	return &Estimator{CounterWidth: domain.DefaultCounterWidth}
}

// Estimate computes average power in Watts between the previous stored
// reading and sample. The boolean is false when no value can be produced:
// on the first call for a fresh state, and when the time delta is not
// positive (stalled or non-monotonic clock). State is advanced to sample in
// every case, so repeated absent results never corrupt the series.
func (e *Estimator) Estimate(state *State, sample domain.EnergySample) (float64, bool) {
	if !state.Seeded() {
		state.store(sample)
		return 0, false
	}

	deltaEnergy := int64(sample.EnergyMicrojoules) - int64(*state.prevEnergy)
	if deltaEnergy < 0 {
		// Counter rolled over. Large post-correction deltas are passed
		// through unclamped; implausible values are a data-quality signal
		// for downstream consumers, not something rejected here.
		deltaEnergy += int64(e.counterWidth())
	}

	deltaTime := sample.ReadAt.Sub(state.prevTime).Seconds()
	state.store(sample)

	if deltaTime <= 0 {
		return 0, false
	}

	// Accumulator units are microjoules: (uJ/s) / 1e6 = W.
	return (float64(deltaEnergy) / deltaTime) / 1e6, true
}

func (e *Estimator) counterWidth() uint64 {
	if e.CounterWidth == 0 {
		return domain.DefaultCounterWidth
	}
	return e.CounterWidth
}
