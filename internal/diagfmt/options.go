package diagfmt

import "gqlmerge/internal/source"

// PrettyOpts configures pretty-printing of an attribution report.
type PrettyOpts struct {
	Color    bool
	PathMode source.PathMode
	// Context prints the offending source line under positioned diagnostics.
	Context bool
	// Links renders paths as file:// URLs, as terminals make them clickable.
	Links bool
	// Summary appends the total count line.
	Summary bool
}

// JSONOpts configures JSON output of a report.
type JSONOpts struct {
	PathMode source.PathMode
	Indent   bool
	Max      int // обрезка вывода, не отчёта
}
