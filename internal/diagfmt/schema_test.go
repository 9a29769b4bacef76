package diagfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gqlmerge/internal/driver"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/source"
)

func TestPrintSchema(t *testing.T) {
	set := source.NewFragmentSet()
	if _, err := set.AddVirtual("q", "type Query { user: User }"); err != nil {
		t.Fatal(err)
	}
	if _, err := set.AddVirtual("u", "type User { id: ID! }"); err != nil {
		t.Fatal(err)
	}
	out, err := engine.NewGraphQL().Merge(context.Background(), set.Fragments())
	if err != nil || !out.OK() {
		t.Fatalf("merge: %v %v", out.Diagnostics, err)
	}
	sdl := SchemaString(out.Schema)
	for _, want := range []string{"type Query", "type User", "id: ID!"} {
		if !strings.Contains(sdl, want) {
			t.Errorf("SDL missing %q:\n%s", want, sdl)
		}
	}
	if strings.Contains(sdl, "__Schema") {
		t.Errorf("built-in types leaked into SDL:\n%s", sdl)
	}
}

func TestDiff(t *testing.T) {
	if d := Diff("a\nb\n", "a\nb\n", false); d != "" {
		t.Errorf("equal texts must produce no diff, got %q", d)
	}
	got := Diff("a\nb\nc\n", "a\nB\nc\n", false)
	want := " a\n-b\n+B\n c\n"
	if got != want {
		t.Errorf("Diff = %q, want %q", got, want)
	}
}

func TestOperationErrors(t *testing.T) {
	var buf bytes.Buffer
	OperationErrors(&buf, []driver.QueryFileError{
		{File: "ops/q.graphql", Errors: []string{"1:9: Cannot query field \"email\" on type \"User\"."}},
	}, false)
	want := "Errors found:\n\nFile: ops/q.graphql\n\t1:9: Cannot query field \"email\" on type \"User\".\n\n"
	if buf.String() != want {
		t.Errorf("OperationErrors = %q, want %q", buf.String(), want)
	}
}
