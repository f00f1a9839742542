package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/app/estimator"
	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

type stubOOB struct {
	watts float64
	err   error
}

func (s *stubOOB) Read(context.Context) (float64, error) { return s.watts, s.err }
func (s *stubOOB) Validate() error                       { return nil }

type stubEnergy struct {
	samples []domain.EnergySample
	err     error
	calls   int
}

func (s *stubEnergy) Read() (domain.EnergySample, error) {
	if s.err != nil {
		return domain.EnergySample{}, s.err
	}
	i := s.calls
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	}
	s.calls++
	return s.samples[i], nil
}

func (s *stubEnergy) Validate() error { return nil }

type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}

func TestCollectAssemblesBothSources(t *testing.T) {
	base := time.Now()
	energy := &stubEnergy{samples: []domain.EnergySample{
		{EnergyMicrojoules: 1_000_000, ReadAt: base},
		{EnergyMicrojoules: 2_000_000, ReadAt: base.Add(time.Second)},
	}}
	c := New(&stubOOB{watts: 210}, energy, estimator.New(), nopObs{})

	var state estimator.State

	first := c.Collect(context.Background(), &state)
	if first.OOBPower == nil || first.OOBPower.Watts != 210 {
		t.Fatalf("expected oob reading on first tick, got %+v", first.OOBPower)
	}
	if first.OnChipPower != nil {
		t.Fatal("first tick must not produce derived power")
	}
	if first.RawEnergyMicrojoules == nil || *first.RawEnergyMicrojoules != 1_000_000 {
		t.Fatalf("expected raw energy recorded, got %v", first.RawEnergyMicrojoules)
	}

	second := c.Collect(context.Background(), &state)
	if second.OnChipPower == nil {
		t.Fatal("expected derived power on second tick")
	}
	if second.OnChipPower.Watts != 1.0 {
		t.Fatalf("expected 1.0 W, got %v", second.OnChipPower.Watts)
	}
	if second.OnChipPower.Source != domain.SourceOnChipEnergy {
		t.Fatalf("wrong source: %s", second.OnChipPower.Source)
	}
}

func TestCollectDegradesIndependently(t *testing.T) {
	base := time.Now()

	// OOB down, energy up.
	energy := &stubEnergy{samples: []domain.EnergySample{{EnergyMicrojoules: 5, ReadAt: base}}}
	c := New(&stubOOB{err: errors.New("bmc unreachable")}, energy, estimator.New(), nopObs{})
	var state estimator.State
	s := c.Collect(context.Background(), &state)
	if s.OOBPower != nil {
		t.Fatal("expected absent oob power")
	}
	if s.RawEnergyMicrojoules == nil {
		t.Fatal("energy side must survive an oob failure")
	}

	// Energy down, OOB up.
	c2 := New(&stubOOB{watts: 199}, &stubEnergy{err: errors.New("sysfs gone")}, estimator.New(), nopObs{})
	var state2 estimator.State
	s2 := c2.Collect(context.Background(), &state2)
	if s2.OOBPower == nil || s2.OOBPower.Watts != 199 {
		t.Fatal("oob side must survive an energy failure")
	}
	if s2.RawEnergyMicrojoules != nil || s2.OnChipPower != nil {
		t.Fatal("expected absent energy fields")
	}
}

func TestCollectTimestampTakenAtRoundStart(t *testing.T) {
	before := time.Now()
	c := New(&stubOOB{watts: 1}, &stubEnergy{samples: []domain.EnergySample{{ReadAt: before}}}, estimator.New(), nopObs{})
	var state estimator.State

	s := c.Collect(context.Background(), &state)
	after := time.Now()

	if s.TimestampUnix < float64(before.UnixNano())/1e9-0.001 || s.TimestampUnix > float64(after.UnixNano())/1e9+0.001 {
		t.Fatalf("tick timestamp out of range: %v", s.TimestampUnix)
	}
	if _, err := time.Parse(domain.TimestampLayout, s.Timestamp); err != nil {
		t.Fatalf("unparseable wall-clock timestamp %q: %v", s.Timestamp, err)
	}
}
