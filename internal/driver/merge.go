package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
)

// Result is a merged schema plus the fragments it was built from.
type Result struct {
	Schema *ast.Schema
	// Set is filled by MergeSchemas; MergeWithAttribution leaves it nil.
	Set *source.FragmentSet
}

// MergeWithAttribution merges frags in order. On failure every diagnostic is
// attributed and returned as *MergeError; an engine fault is returned as is.
func MergeWithAttribution(ctx context.Context, eng engine.Engine, frags []source.Fragment, opts MergeOptions) (*Result, error) {
	if len(frags) == 0 {
		return nil, ErrNoFragments
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "merge")
	span.WithExtra("fragments", strconv.Itoa(len(frags)))

	var full engine.Outcome
	err := opts.Timer.Track("merge", func() error {
		var merr error
		full, merr = eng.Merge(ctx, frags)
		return merr
	})
	if err != nil {
		span.End("fault")
		return nil, err
	}
	if full.OK() {
		span.End("ok")
		return &Result{Schema: full.Schema}, nil
	}

	var report *attrib.Report
	err = opts.Timer.Track("attribution", func() error {
		var aerr error
		report, aerr = attrib.Attribute(ctx, eng, frags, full.Diagnostics, opts.attribOptions())
		return aerr
	})
	if err != nil {
		span.End("fault")
		return nil, err
	}
	merr := &MergeError{Report: report}
	span.End(merr.Kind().String())
	return nil, merr
}

// MergeSchemas expands patterns, loads the files in order and merges them.
// On *MergeError the returned Result is non-nil and carries Set so the
// report can be rendered against the sources.
func MergeSchemas(ctx context.Context, patterns []string, opts MergeOptions) (*Result, error) {
	var set *source.FragmentSet
	err := opts.Timer.Track("load", func() error {
		var lerr error
		set, lerr = source.LoadGlob(ctx, opts.Jobs, patterns...)
		return lerr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if opts.BaseDir != "" {
		set.SetBaseDir(opts.BaseDir)
	}

	res, err := MergeWithAttribution(ctx, opts.engine(), set.Fragments(), opts)
	if res == nil {
		res = &Result{}
	}
	res.Set = set
	var merr *MergeError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &merr):
		return res, err
	default:
		return nil, err
	}
}
