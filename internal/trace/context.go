package trace

import "context"

type ctxKey struct{}

// binding is what a context carries: the tracer and the innermost span
// opened through Start.
type binding struct {
	tracer Tracer
	span   uint64
}

func lookup(ctx context.Context) binding {
	var b binding
	if ctx != nil {
		b, _ = ctx.Value(ctxKey{}).(binding)
	}
	if b.tracer == nil {
		b.tracer = Nop
	}
	return b
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return lookup(ctx).tracer
}

// WithTracer attaches t to ctx; spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, binding{tracer: t})
}
