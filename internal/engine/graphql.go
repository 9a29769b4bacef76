package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

// GraphQLName identifies the gqlparser engine in cache keys and faults.
const GraphQLName = "gqlparser"

// GraphQL merges GraphQL SDL fragments with gqlparser.
//
// Every fragment is parsed on its own first, so syntax errors from all
// fragments are reported together and carry positions. Only when every
// fragment parses are the documents loaded as one schema; schema-stage
// diagnostics are reported without position because they may depend on
// several fragments.
type GraphQL struct{}

// NewGraphQL returns the gqlparser-backed engine.
func NewGraphQL() *GraphQL {
	return &GraphQL{}
}

func (g *GraphQL) Merge(ctx context.Context, frags []source.Fragment) (out Outcome, err error) {
	if cerr := ctx.Err(); cerr != nil {
		return Outcome{}, &FaultError{Engine: GraphQLName, Err: cerr}
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = Outcome{}, &FaultError{Engine: GraphQLName, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	sources := make([]*ast.Source, len(frags))
	syntax := diag.NewBag()
	for i := range frags {
		src := &ast.Source{Name: frags[i].ID, Input: frags[i].Text}
		sources[i] = src
		if _, perr := parser.ParseSchema(src); perr != nil {
			ds, ferr := toDiagnostics(perr, diag.StageSyntax, frags[i].ID)
			if ferr != nil {
				return Outcome{}, ferr
			}
			for _, d := range ds {
				syntax.Add(d)
			}
		}
	}
	// синтаксис ломает слияние целиком, схему не строим
	if syntax.Len() > 0 {
		return Failure(syntax.Items()...), nil
	}

	schema, lerr := gqlparser.LoadSchema(sources...)
	if lerr != nil {
		ds, ferr := toDiagnostics(lerr, diag.StageSchema, "")
		if ferr != nil {
			return Outcome{}, ferr
		}
		return Failure(ds...), nil
	}
	return Success(schema), nil
}

func toDiagnostics(err error, stage diag.Stage, file string) ([]diag.Diagnostic, error) {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return []diag.Diagnostic{fromGQLError(gqlErr, stage, file)}, nil
	}
	var list gqlerror.List
	if errors.As(err, &list) && len(list) > 0 {
		out := make([]diag.Diagnostic, 0, len(list))
		for _, e := range list {
			if e != nil {
				out = append(out, fromGQLError(e, stage, file))
			}
		}
		return out, nil
	}
	return nil, &FaultError{Engine: GraphQLName, Err: err}
}

func fromGQLError(e *gqlerror.Error, stage diag.Stage, file string) diag.Diagnostic {
	loc := diag.Location{File: file}
	if name, ok := e.Extensions["file"].(string); ok && name != "" {
		loc.File = name
	}
	if len(e.Locations) > 0 {
		loc.Line = e.Locations[0].Line
		loc.Column = e.Locations[0].Column
	}
	if stage == diag.StageSyntax {
		return diag.NewSyntaxError(e.Message, loc)
	}
	return diag.NewError(stage, e.Message).WithLocation(loc)
}
