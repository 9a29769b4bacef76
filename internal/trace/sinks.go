package trace

import (
	"errors"
	"io"
	"sync"
)

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// StreamTracer writes each event as soon as it is emitted.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	level  Level
	format Format
	count  int
	closed bool
	err    error // first write error, reported by Flush/Close
}

// NewStreamTracer writes to w. For FormatChrome the array header goes out
// immediately and Close terminates it.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	s := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		s.write([]byte(`{"traceEvents":[` + "\n"))
	}
	return s
}

func (s *StreamTracer) write(p []byte) {
	if s.err != nil || len(p) == 0 {
		return
	}
	_, s.err = s.w.Write(p)
}

func (s *StreamTracer) Emit(ev *Event) {
	if ev == nil || !passes(s.level, ev) {
		return
	}
	line := FormatEvent(ev, s.format)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.format == FormatChrome && s.count > 0 {
		s.write([]byte(",\n"))
	}
	s.write(line)
	s.count++
}

func (s *StreamTracer) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Sync() error }); ok && s.closer != nil {
		if err := f.Sync(); err != nil && s.err == nil {
			s.err = err
		}
	}
	return s.err
}

func (s *StreamTracer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.err
	}
	s.closed = true
	if s.format == FormatChrome {
		s.write([]byte("\n]}\n"))
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = err
		}
	}
	return s.err
}

func (s *StreamTracer) Level() Level  { return s.level }
func (s *StreamTracer) Enabled() bool { return s.level > LevelOff }

// RingTracer keeps the last N events in memory.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // slot for the next event
	full  bool
	level Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (r *RingTracer) Emit(ev *Event) {
	if ev == nil || !passes(r.level, ev) {
		return
	}
	r.mu.Lock()
	r.buf[r.next] = *ev
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
	r.mu.Unlock()
}

// Snapshot copies the buffered events, oldest first.
func (r *RingTracer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dump writes the snapshot to w; FormatChrome produces a complete document.
func (r *RingTracer) Dump(w io.Writer, format Format) error {
	s := NewStreamTracer(w, LevelDebug, format)
	for _, ev := range r.Snapshot() {
		s.Emit(&ev)
	}
	return s.Close()
}

func (r *RingTracer) Flush() error  { return nil }
func (r *RingTracer) Close() error  { return nil }
func (r *RingTracer) Level() Level  { return r.level }
func (r *RingTracer) Enabled() bool { return r.level > LevelOff }

// MultiTracer fans events out to several tracers.
type MultiTracer struct {
	level   Level
	tracers []Tracer
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, tracers: tracers}
}

func (m *MultiTracer) Emit(ev *Event) {
	for _, t := range m.tracers {
		t.Emit(ev)
	}
}

func (m *MultiTracer) Flush() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (m *MultiTracer) Close() error {
	var errs []error
	for _, t := range m.tracers {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m *MultiTracer) Level() Level  { return m.level }
func (m *MultiTracer) Enabled() bool { return m.level > LevelOff }

// Ring returns the first ring child, or nil.
func (m *MultiTracer) Ring() *RingTracer {
	for _, t := range m.tracers {
		if r, ok := t.(*RingTracer); ok {
			return r
		}
	}
	return nil
}
