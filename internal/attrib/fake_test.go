package attrib

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"gqlmerge/internal/diag"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
)

// fakeEngine understands a tiny line language:
//
//	def X    defines X; two definitions yield "X defined twice"
//	self X   "X conflicts with itself" (wrapped with merge context when
//	         more than one fragment is merged)
//	!msg     positioned syntax error; syntax errors stop the merge
//	fault    the engine call itself fails
type fakeEngine struct {
	// inject is appended whenever at least injectMin fragments are merged.
	inject    string
	injectMin int
	calls     atomic.Int64
}

func (e *fakeEngine) Merge(ctx context.Context, frags []source.Fragment) (engine.Outcome, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return engine.Outcome{}, err
	}

	var syntax, semantic []diag.Diagnostic
	defs := map[string]int{}
	var order []string
	for _, f := range frags {
		for n, line := range strings.Split(f.Text, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "fault":
				return engine.Outcome{}, &engine.FaultError{Engine: "fake", Err: errors.New("out of memory")}
			case strings.HasPrefix(line, "!"):
				syntax = append(syntax, diag.NewSyntaxError("Syntax Error: "+line[1:],
					diag.Location{File: f.ID, Line: n + 1, Column: 1}))
			case strings.HasPrefix(line, "def "):
				name := strings.TrimPrefix(line, "def ")
				if defs[name] == 0 {
					order = append(order, name)
				}
				defs[name]++
			case strings.HasPrefix(line, "self "):
				msg := strings.TrimPrefix(line, "self ") + " conflicts with itself"
				if len(frags) > 1 {
					msg = "merge: " + msg
				}
				semantic = append(semantic, diag.NewError(diag.StageSchema, msg))
			}
		}
	}
	if len(syntax) > 0 {
		return engine.Failure(syntax...), nil
	}
	for _, name := range order {
		if defs[name] > 1 {
			semantic = append(semantic, diag.NewError(diag.StageSchema, fmt.Sprintf("%s defined twice", name)))
		}
	}
	if e.inject != "" && len(frags) >= e.injectMin {
		semantic = append(semantic, diag.NewError(diag.StageSchema, e.inject))
	}
	if len(semantic) > 0 {
		return engine.Failure(semantic...), nil
	}
	return engine.Success(nil), nil
}

func (e *fakeEngine) Calls() int64 {
	return e.calls.Load()
}
