package powermon

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSinkClosed is returned when a channel sink is written to after
// being closed.
var ErrChannelSinkClosed = errors.New("powermon: channel sink closed")

// SeriesSink is invoked with the completed series at run finalize.
type SeriesSink func([]Sample) error

// NewCallbackSink adapts a SeriesSink into a full Sink implementation so
// callers can plug arbitrary functions without defining structs.
func NewCallbackSink(name string, fn SeriesSink) Sink {
	if name == "" {
		name = "callback"
	}
	return &callbackSink{name: name, fn: fn}
}

// NewChannelSink exposes the finished series via a channel; it returns the
// sink, the read-only channel, and a close function the caller should invoke
// during shutdown.
func NewChannelSink(name string, bufferLen int) (Sink, <-chan []Sample, func()) {
	if name == "" {
		name = "channel"
	}
	if bufferLen < 0 {
		bufferLen = 0
	}
	ch := make(chan []Sample, bufferLen)
	s := &channelSink{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackSink struct {
	name string
	fn   SeriesSink
}

func (s *callbackSink) WriteAll(samples []Sample) error {
	if s.fn == nil {
		return fmt.Errorf("callback sink %q: nil handler", s.name)
	}
	if len(samples) == 0 {
		return nil
	}
	return s.fn(samples)
}

func (s *callbackSink) Name() string { return s.name }

type channelSink struct {
	name   string
	ch     chan []Sample
	closed chan struct{}
	once   sync.Once
}

func (s *channelSink) WriteAll(samples []Sample) error {
	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	default:
	}

	if len(samples) == 0 {
		return nil
	}

	select {
	case <-s.closed:
		return ErrChannelSinkClosed
	case s.ch <- samples:
		return nil
	}
}

func (s *channelSink) Name() string { return s.name }

func (s *channelSink) close() {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
}
