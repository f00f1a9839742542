package ports

import (
	"context"
	"errors"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

// Sentinel errors shared by both reader adapters. Callers classify failures
// with errors.Is; the wrapped error keeps the platform detail.
var (
	ErrInterfaceUnavailable = errors.New("interface unavailable")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrParse                = errors.New("unparseable reading")
	ErrToolNotFound         = errors.New("tool not found")
	ErrTimeout              = errors.New("read timed out")
	ErrNonZeroExit          = errors.New("tool exited non-zero")
)

// EnergyCounterReader reads the raw monotonic energy accumulator. A single
// read never retries; the caller decides whether to skip the tick.
type EnergyCounterReader interface {
	Read() (domain.EnergySample, error)
	// Validate reports whether the interface is usable at all. Run once at
	// startup; a failure here is fatal, unlike per-tick read errors.
	Validate() error
}

// OutOfBandPowerReader obtains an instantaneous power value from the
// management controller. Implementations must bound the call with the
// context deadline and must not retry internally.
type OutOfBandPowerReader interface {
	Read(ctx context.Context) (float64, error)
	Validate() error
}
