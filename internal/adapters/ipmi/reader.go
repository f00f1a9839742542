// Package ipmi obtains the management controller's instantaneous power
// reading by invoking ipmitool and parsing its text output.
package ipmi

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

const (
	DefaultTool    = "ipmitool"
	DefaultTimeout = 5 * time.Second
)

// DefaultArgs requests the DCMI power reading.
var DefaultArgs = []string{"dcmi", "power", "reading"}

const readingMarker = "Instantaneous power reading"

type Reader struct {
	tool    string
	args    []string
	timeout time.Duration
}

func NewReader(tool string, args []string, timeout time.Duration) *Reader {
	if tool == "" {
		tool = DefaultTool
	}
	if len(args) == 0 {
		args = DefaultArgs
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reader{tool: tool, args: args, timeout: timeout}
}

func (r *Reader) Tool() string { return r.tool }

// Read runs the tool once, bounded by the configured timeout, and extracts
// the Watts value. The subprocess is killed when the context expires, so a
// hung controller cannot stall the sampling loop. Never retries.
func (r *Reader) Read(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.tool, r.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return 0, fmt.Errorf("%w: %s after %s", ports.ErrTimeout, r.tool, r.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(err, exec.ErrNotFound):
			return 0, fmt.Errorf("%w: %s", ports.ErrToolNotFound, r.tool)
		case errors.As(err, &exitErr):
			return 0, fmt.Errorf("%w: %s: %s", ports.ErrNonZeroExit, r.tool, strings.TrimSpace(stderr.String()))
		default:
			return 0, fmt.Errorf("run %s: %w", r.tool, err)
		}
	}

	return ParseReading(stdout.String())
}

// Validate checks the tool can be resolved on PATH. Run once at startup.
func (r *Reader) Validate() error {
	if _, err := exec.LookPath(r.tool); err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ports.ErrToolNotFound, r.tool)
	}
	return nil
}

// ParseReading extracts the Watts value from DCMI power reading output,
// looking for a line of the form
//
//	Instantaneous power reading:                   220 Watts
func ParseReading(output string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, readingMarker) {
			continue
		}
		_, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		watts, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad power value %q", ports.ErrParse, fields[0])
		}
		return watts, nil
	}
	return 0, fmt.Errorf("%w: no %q line in output", ports.ErrParse, readingMarker)
}

var _ ports.OutOfBandPowerReader = (*Reader)(nil)
