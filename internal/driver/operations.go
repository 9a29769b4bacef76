package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"gqlmerge/internal/source"
	"gqlmerge/internal/trace"
)

// QueryFileError lists the problems of one operation file.
type QueryFileError struct {
	File   string   `json:"file" yaml:"file"`
	Errors []string `json:"errors" yaml:"errors"`
}

// ValidateOperations checks every operation file matched by patterns against
// schema. Only failing files are returned, in discovery order. An unreadable
// file yields a QueryFileError carrying the read error.
func ValidateOperations(ctx context.Context, patterns []string, schema *ast.Schema, jobs int) ([]QueryFileError, error) {
	if schema == nil {
		return nil, fmt.Errorf("validate operations: no schema")
	}
	files, err := source.Discover(patterns...)
	if err != nil {
		return nil, err
	}
	ctx, span := trace.Start(ctx, trace.ScopePhase, "operations")
	defer span.End("")

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([][]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(schema, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []QueryFileError
	for i, errs := range results {
		if len(errs) > 0 {
			out = append(out, QueryFileError{File: files[i], Errors: errs})
		}
	}
	return out, nil
}

func validateFile(schema *ast.Schema, path string) []string {
	// #nosec G304 -- path comes from glob expansion chosen by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return []string{err.Error()}
	}
	_, list := gqlparser.LoadQuery(schema, string(content))
	out := make([]string, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		if len(e.Locations) > 0 {
			loc := e.Locations[0]
			out = append(out, fmt.Sprintf("%d:%d: %s", loc.Line, loc.Column, e.Message))
			continue
		}
		out = append(out, e.Message)
	}
	return out
}
