package sink

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleSinkLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSink(&buf)

	samples := samplePair()
	if err := c.WriteOne(samples[0]); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.WriteOne(samples[1]); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "IPMI:    220.00W") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "IPMI:        N/A") {
		t.Fatalf("expected N/A for failed read, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "RAPL Package:     42.25W") {
		t.Fatalf("expected rapl value preserved, got %q", lines[1])
	}
}
