package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func stamp(ev *Event) *Event {
	ev.Time = time.Now()
	ev.Seq = seqCounter.Add(1)
	return ev
}

// Span is an open begin/end pair. The zero Span is disabled: every method
// is a no-op on it, as on nil.
type Span struct {
	tracer Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	begun  time.Time
	extra  map[string]string
}

func (s *Span) live() bool {
	return s != nil && s.tracer != nil
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
// A disabled tracer or a filtered scope yields a disabled span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	s := &Span{
		tracer: t,
		id:     spanCounter.Add(1),
		parent: parent,
		scope:  scope,
		name:   name,
		begun:  time.Now(),
	}
	t.Emit(stamp(&Event{Kind: KindSpanBegin, Scope: scope, SpanID: s.id, ParentID: parent, Name: name}))
	return s
}

// Start opens a span under the one carried by ctx and returns a context
// that carries the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	b := lookup(ctx)
	s := Begin(b.tracer, scope, name, b.span)
	if !s.live() {
		return ctx, s
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: b.tracer, span: s.id}), s
}

// WithExtra sets a key that is reported on the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	d := time.Since(s.begun)
	s.tracer.Emit(stamp(&Event{
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	}))
	return d
}

// ID is 0 for disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event, e.g. a cache hit.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(stamp(&Event{Kind: KindPoint, Scope: scope, Name: name, Detail: detail}))
}
