// Package collector assembles one Sample per sampling round from the two
// independent telemetry sources.
package collector

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aharivel/power-measurement-toolkit/internal/app/estimator"
	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

type Collector struct {
	oob       ports.OutOfBandPowerReader
	energy    ports.EnergyCounterReader
	estimator *estimator.Estimator
	obs       ports.Observability
}

func New(oob ports.OutOfBandPowerReader, energy ports.EnergyCounterReader, est *estimator.Estimator, obs ports.Observability) *Collector {
	if est == nil {
		est = estimator.New()
	}
	return &Collector{oob: oob, energy: energy, estimator: est, obs: obs}
}

// Validate runs the startup interface checks for both sources and returns
// every failure it finds, joined. Any error here is fatal for the run;
// nothing has been sampled yet.
func (c *Collector) Validate() error {
	var errs []error
	if err := c.oob.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.energy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Collect runs one sampling round. The wall-clock timestamp is taken once at
// the start so source latency cannot skew the recorded tick time. Both reads
// run concurrently and both have finished (or failed) by the time the Sample
// is returned; a failure in either source leaves only its own fields absent.
// Collect never fails as a whole.
func (c *Collector) Collect(ctx context.Context, state *estimator.State) domain.Sample {
	sample := domain.NewSample(time.Now())

	var (
		oobWatts     float64
		oobErr       error
		energySample domain.EnergySample
		energyErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		oobWatts, oobErr = c.oob.Read(gctx)
		return nil
	})
	g.Go(func() error {
		energySample, energyErr = c.energy.Read()
		return nil
	})
	_ = g.Wait() // the goroutines only report through the captured variables

	if oobErr != nil {
		c.obs.LogError("oob_read_failed", oobErr)
		c.obs.IncCounter("powermon_degraded_oob_reads_total", 1)
	} else {
		sample.OOBPower = &domain.PowerReading{Watts: oobWatts, Source: domain.SourceOutOfBand}
		c.obs.SetGauge("powermon_last_ipmi_watts", oobWatts)
	}

	if energyErr != nil {
		c.obs.LogError("rapl_read_failed", energyErr)
		c.obs.IncCounter("powermon_degraded_rapl_reads_total", 1)
	} else {
		raw := energySample.EnergyMicrojoules
		sample.RawEnergyMicrojoules = &raw
		// First tick and stalled-clock ticks yield no power value; that is
		// expected, not an error.
		if watts, ok := c.estimator.Estimate(state, energySample); ok {
			sample.OnChipPower = &domain.PowerReading{Watts: watts, Source: domain.SourceOnChipEnergy}
			c.obs.SetGauge("powermon_last_rapl_watts", watts)
		}
	}

	return sample
}
