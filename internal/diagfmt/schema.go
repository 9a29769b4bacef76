package diagfmt

import (
	"bytes"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// PrintSchema writes schema as SDL. Built-in types are omitted.
func PrintSchema(w io.Writer, schema *ast.Schema) {
	if schema == nil {
		return
	}
	formatter.NewFormatter(w).FormatSchema(schema)
}

// SchemaString renders schema as SDL.
func SchemaString(schema *ast.Schema) string {
	var buf bytes.Buffer
	PrintSchema(&buf, schema)
	return buf.String()
}

// Diff returns a line diff from oldText to newText, or "" when they match.
// Changed lines are prefixed with "-" or "+", context lines with " ".
func Diff(oldText, newText string, useColor bool) string {
	if oldText == newText {
		return ""
	}
	pal := newPalette(useColor)
	added := color.New(color.FgGreen)
	if useColor {
		added.EnableColor()
	} else {
		added.DisableColor()
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				out.WriteString(pal.caret.Sprint("-" + line))
			case diffmatchpatch.DiffInsert:
				out.WriteString(added.Sprint("+" + line))
			default:
				out.WriteString(" " + line)
			}
			out.WriteString("\n")
		}
	}
	return out.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
