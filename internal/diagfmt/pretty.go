package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

type palette struct {
	label   *color.Color
	path    *color.Color
	muted   *color.Color
	caret   *color.Color
	warning *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		label:   mk(color.FgRed, color.Bold),
		path:    mk(color.FgBlue, color.Underline),
		muted:   mk(color.Faint),
		caret:   mk(color.FgRed),
		warning: mk(color.FgYellow),
	}
}

// Pretty форматирует отчёт в человекочитаемый вид.
// Для каждой записи печатает:
//
//	error(<N>): <message>
//	  --> <path>[:line:col] | multiple: <paths> | unattributed
//
// затем строку исходника с ^ под колонкой (для позиционированных ошибок).
func Pretty(w io.Writer, report *attrib.Report, set *source.FragmentSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, rec := range report.Records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n",
			pal.label.Sprintf("error(%d):", rec.Ordinal),
			diag.SanitizeMessage(rec.Diagnostic.Message))

		switch {
		case !rec.Attributed():
			fmt.Fprintf(w, "  %s %s\n", pal.muted.Sprint("-->"), pal.warning.Sprint("unattributed"))
		case rec.IsMultiple():
			paths := make([]string, len(rec.Candidates))
			for j, id := range rec.Candidates {
				paths[j] = pal.path.Sprint(renderPath(set, id, opts))
			}
			fmt.Fprintf(w, "  %s %s %s\n", pal.muted.Sprint("-->"), attrib.Multiple+":", strings.Join(paths, ", "))
		default:
			where := renderPath(set, rec.FragmentID, opts)
			if loc := rec.Diagnostic.Location; rec.Diagnostic.HasPosition() && loc.Known() && !opts.Links {
				where = fmt.Sprintf("%s:%d:%d", where, loc.Line, max(loc.Column, 1))
			}
			fmt.Fprintf(w, "  %s %s\n", pal.muted.Sprint("-->"), pal.path.Sprint(where))
		}

		if opts.Context && rec.Diagnostic.HasPosition() {
			writeContext(w, set, rec.Diagnostic.Location, pal)
		}
	}
	if opts.Summary {
		if len(report.Records) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, Summary(report))
	}
}

// Summary returns the closing count line.
func Summary(report *attrib.Report) string {
	unattributed := len(report.Unattributed())
	if unattributed == 0 {
		return fmt.Sprintf("total errors found: %d", report.Total)
	}
	return fmt.Sprintf("total errors found: %d (%d unattributed)", report.Total, unattributed)
}

func renderPath(set *source.FragmentSet, id string, opts PrettyOpts) string {
	if opts.Links {
		if f, ok := set.Get(id); ok && !f.Virtual() {
			return source.FileURL(f.ID)
		}
	}
	return formatPath(set, id, opts.PathMode)
}

func writeContext(w io.Writer, set *source.FragmentSet, loc diag.Location, pal palette) {
	if set == nil || loc.Line <= 0 {
		return
	}
	line, col, ok := resolveLine(set, loc)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%d", loc.Line)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(w, "  %s %s\n", pal.muted.Sprint(gutter+" |"), expandTabs(line))

	prefix := line
	if int(col) <= len(line)+1 {
		prefix = line[:int(col)-1]
	}
	caretPad := runewidth.StringWidth(expandTabs(prefix))
	fmt.Fprintf(w, "  %s %s%s\n", pal.muted.Sprint(pad+" |"), strings.Repeat(" ", caretPad), pal.caret.Sprint("^"))
}

func resolveLine(set *source.FragmentSet, loc diag.Location) (string, uint32, bool) {
	line, err := safecast.Conv[uint32](loc.Line)
	if err != nil {
		return "", 0, false
	}
	col, err := safecast.Conv[uint32](max(loc.Column, 1))
	if err != nil {
		return "", 0, false
	}
	text, pos, ok := set.Resolve(loc.File, line, col)
	return text, pos.Col, ok
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
