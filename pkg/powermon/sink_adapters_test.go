package powermon

import (
	"errors"
	"testing"
)

func TestCallbackSink(t *testing.T) {
	var got []Sample
	s := NewCallbackSink("", func(series []Sample) error {
		got = series
		return nil
	})
	if s.Name() != "callback" {
		t.Fatalf("expected default name, got %s", s.Name())
	}

	series := []Sample{{Timestamp: "a"}, {Timestamp: "b"}}
	if err := s.WriteAll(series); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 samples delivered, got %d", len(got))
	}

	nilSink := NewCallbackSink("broken", nil)
	if err := nilSink.WriteAll(series); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestChannelSink(t *testing.T) {
	s, ch, closeFn := NewChannelSink("", 1)

	series := []Sample{{Timestamp: "a"}}
	if err := s.WriteAll(series); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := <-ch
	if !ok || len(got) != 1 {
		t.Fatalf("expected series on channel, got %v ok=%v", got, ok)
	}

	closeFn()
	if err := s.WriteAll(series); !errors.Is(err, ErrChannelSinkClosed) {
		t.Fatalf("expected ErrChannelSinkClosed, got %v", err)
	}

	// Closing twice must be safe.
	closeFn()
}
