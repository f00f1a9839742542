// Package rapl reads the powercap energy accumulator exposed by the kernel
// under /sys/class/powercap.
package rapl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// DefaultEnergyPath is the package-0 RAPL energy counter on Intel platforms.
const DefaultEnergyPath = "/sys/class/powercap/intel-rapl/intel-rapl:0/energy_uj"

type Reader struct {
	path string
}

func NewReader(path string) *Reader {
	if path == "" {
		path = DefaultEnergyPath
	}
	return &Reader{path: path}
}

func (r *Reader) Path() string { return r.path }

// Read returns the current accumulator value in microjoules together with
// the read timestamp. No retries; a failed read degrades the tick.
func (r *Reader) Read() (domain.EnergySample, error) {
	raw, err := os.ReadFile(r.path)
	readAt := time.Now()
	if err != nil {
		return domain.EnergySample{}, classifyReadError(r.path, err)
	}

	value, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return domain.EnergySample{}, fmt.Errorf("%w: %q in %s", ports.ErrParse, strings.TrimSpace(string(raw)), r.path)
	}

	return domain.EnergySample{EnergyMicrojoules: value, ReadAt: readAt}, nil
}

// Validate performs the startup check: the counter must exist and be
// readable. Failures here are fatal for the run.
func (r *Reader) Validate() error {
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: RAPL interface not found at %s", ports.ErrInterfaceUnavailable, r.path)
		}
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	if _, err := os.ReadFile(r.path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%w: reading RAPL at %s (try running as root)", ports.ErrPermissionDenied, r.path)
		}
		return fmt.Errorf("read %s: %w", r.path, err)
	}
	return nil
}

func classifyReadError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ports.ErrInterfaceUnavailable, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ports.ErrPermissionDenied, path)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}

var _ ports.EnergyCounterReader = (*Reader)(nil)
