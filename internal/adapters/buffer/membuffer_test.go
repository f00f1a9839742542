package buffer

import (
	"fmt"
	"testing"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

func TestAppendAndSnapshotPreserveOrder(t *testing.T) {
	b := NewMemBuffer(10)
	for i := 0; i < 3; i++ {
		b.Append(domain.Sample{Timestamp: fmt.Sprintf("t%d", i)})
	}

	got := b.Snapshot()
	if len(got) != 3 || b.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	for i, s := range got {
		if s.Timestamp != fmt.Sprintf("t%d", i) {
			t.Fatalf("order broken at %d: %s", i, s.Timestamp)
		}
	}

	// Snapshot is a copy; mutating it must not touch the buffer.
	got[0].Timestamp = "mutated"
	if b.Snapshot()[0].Timestamp != "t0" {
		t.Fatal("snapshot aliases internal storage")
	}
}

func TestOverflowEvictsOldest(t *testing.T) {
	b := NewMemBuffer(2)
	for i := 0; i < 5; i++ {
		b.Append(domain.Sample{Timestamp: fmt.Sprintf("t%d", i)})
	}

	got := b.Snapshot()
	if len(got) != 2 {
		t.Fatalf("expected capacity 2, got %d", len(got))
	}
	if got[0].Timestamp != "t3" || got[1].Timestamp != "t4" {
		t.Fatalf("expected newest two samples, got %s %s", got[0].Timestamp, got[1].Timestamp)
	}
	if b.Dropped() != 3 {
		t.Fatalf("expected 3 drops, got %d", b.Dropped())
	}
}
