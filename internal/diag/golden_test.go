package diag

import (
	"path/filepath"
	"testing"
)

func TestFormatGolden(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "workspace")
	items := []Diagnostic{
		NewSyntaxError("Expected Name,\nfound }", Location{File: filepath.Join(base, "schema", "b.graphql"), Line: 3, Column: 1}),
		NewError(StageSchema, "Cannot redeclare type Query."),
		New(SevWarning, StageOperation, "unused fragment").WithLocation(Location{File: "./ops/q.graphql", Line: 2}),
	}

	want := "error syntax schema/b.graphql:3:1 Expected Name, found }\n" +
		"error schema - Cannot redeclare type Query.\n" +
		"warning operation ops/q.graphql:2 unused fragment"

	if got := FormatGolden(items, base); got != want {
		t.Fatalf("unexpected golden output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestFormatGoldenEmpty(t *testing.T) {
	if got := FormatGolden(nil, ""); got != "" {
		t.Errorf("FormatGolden(nil) = %q", got)
	}
}
