package diag

import "fmt"

// Location points into a fragment. Line and Column are 1-based; zero means unknown.
type Location struct {
	File   string `json:"file,omitempty" yaml:"file,omitempty" msgpack:"file"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty" msgpack:"line"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty" msgpack:"column"`
}

// Known reports whether the location carries a line.
func (l Location) Known() bool {
	return l.Line > 0
}

func (l Location) String() string {
	switch {
	case !l.Known():
		return l.File
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	default:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
}

type Diagnostic struct {
	Severity   Severity `msgpack:"sev"`
	Stage      Stage    `msgpack:"stage"`
	Message    string   `msgpack:"msg"`
	Positioned bool     `msgpack:"pos"`
	Location   Location `msgpack:"loc"`
}

// HasPosition reports whether the diagnostic carries a source location of its
// own (syntax-level errors).
func (d Diagnostic) HasPosition() bool {
	return d.Positioned
}

func (d Diagnostic) String() string {
	if d.Location.Known() {
		return fmt.Sprintf("%s: %s", d.Location, d.Message)
	}
	return d.Message
}

func New(sev Severity, stage Stage, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Stage:    stage,
		Message:  msg,
	}
}

func NewError(stage Stage, msg string) Diagnostic {
	return New(SevError, stage, msg)
}

// NewSyntaxError builds a positioned syntax diagnostic.
func NewSyntaxError(msg string, loc Location) Diagnostic {
	d := New(SevError, StageSyntax, msg)
	d.Positioned = true
	d.Location = loc
	return d
}

// WithLocation attaches a display location without marking the diagnostic positioned.
func (d Diagnostic) WithLocation(loc Location) Diagnostic {
	d.Location = loc
	return d
}
