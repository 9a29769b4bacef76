// Package engine adapts schema-construction engines to the merge contract the
// attribution core consumes: an ordered fragment list in, a schema or an
// ordered diagnostic list out.
//
// Engines must be deterministic for a fixed input and free of shared side
// effects, so the same fragment list can be merged concurrently and repeatedly.
package engine

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

// Engine builds a unified schema from an ordered fragment list.
//
// A merge that fails on the fragments' merits returns an Outcome with
// diagnostics and a nil error. A non-nil error is an engine fault (the call
// itself broke) and is never retried.
type Engine interface {
	Merge(ctx context.Context, frags []source.Fragment) (Outcome, error)
}

// Func adapts a function to Engine.
type Func func(ctx context.Context, frags []source.Fragment) (Outcome, error)

func (f Func) Merge(ctx context.Context, frags []source.Fragment) (Outcome, error) {
	return f(ctx, frags)
}

// Outcome is Success(schema) when Diagnostics is empty, Failure otherwise.
type Outcome struct {
	Schema      *ast.Schema
	Diagnostics []diag.Diagnostic
}

// Success returns a successful outcome.
func Success(schema *ast.Schema) Outcome {
	return Outcome{Schema: schema}
}

// Failure returns a failed outcome carrying diagnostics in engine order.
func Failure(diags ...diag.Diagnostic) Outcome {
	return Outcome{Diagnostics: diags}
}

// OK reports whether the merge succeeded.
func (o Outcome) OK() bool {
	return len(o.Diagnostics) == 0
}

// FaultError reports an engine failure outside the diagnostic protocol.
type FaultError struct {
	Engine string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s: engine fault: %v", e.Engine, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
