package powermon

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

type stubEnergyReader struct {
	energy atomic.Uint64
}

func (s *stubEnergyReader) Read() (domain.EnergySample, error) {
	return domain.EnergySample{
		EnergyMicrojoules: s.energy.Add(1_000_000),
		ReadAt:            time.Now(),
	}, nil
}

func (s *stubEnergyReader) Validate() error { return nil }

type stubPowerReader struct{}

func (stubPowerReader) Read(context.Context) (float64, error) { return 215, nil }
func (stubPowerReader) Validate() error                       { return nil }

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Sampling.Interval = Duration(10 * time.Millisecond)
	cfg.Sampling.Duration = Duration(50 * time.Millisecond)
	cfg.Sampling.Quiet = true
	cfg.Output.CSVPath = filepath.Join(t.TempDir(), "run.csv")
	return cfg
}

func TestRuntimeRunWithInjectedReaders(t *testing.T) {
	cfg := testConfig(t)

	rt, err := NewRuntime(cfg,
		WithEnergyReader(&stubEnergyReader{}),
		WithPowerReader(stubPowerReader{}),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	summary, err := rt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Samples == 0 {
		t.Fatal("expected samples from a bounded run")
	}

	f, err := os.Open(cfg.Output.CSVPath)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != summary.Samples+1 {
		t.Fatalf("expected %d rows plus header, got %d", summary.Samples, len(records))
	}
}

func TestRuntimeDeliversSeriesToCallbackSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.CSVPath = ""

	var delivered int
	rt, err := NewRuntime(cfg,
		WithEnergyReader(&stubEnergyReader{}),
		WithPowerReader(stubPowerReader{}),
		WithSink(NewCallbackSink("test", func(series []Sample) error {
			delivered = len(series)
			return nil
		})),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}

	summary, err := rt.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if delivered != summary.Samples {
		t.Fatalf("callback saw %d samples, summary says %d", delivered, summary.Samples)
	}
}

func TestRuntimeRequiresConfig(t *testing.T) {
	if _, err := NewRuntime(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
