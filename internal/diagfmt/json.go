package diagfmt

import (
	"encoding/json"
	"io"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/source"
)

// JSON writes the report as a single JSON document.
func JSON(w io.Writer, report *attrib.Report, set *source.FragmentSet, opts JSONOpts) error {
	out := BuildReportOutput(report, set, opts.PathMode, opts.Max)
	enc := json.NewEncoder(w)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
