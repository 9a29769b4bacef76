package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"gqlmerge/internal/attrib"
	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

// Short prints one tab-separated line per record: ordinal, source, message.
func Short(w io.Writer, report *attrib.Report, set *source.FragmentSet, mode source.PathMode) {
	for _, rec := range report.Records {
		fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Ordinal, recordSource(rec, set, mode), oneLine(rec.Diagnostic.Message))
	}
}

// ErrorText is the payload of the error returned for a failed merge.
// Unattributed records are included.
func ErrorText(report *attrib.Report, set *source.FragmentSet, mode source.PathMode) string {
	var b strings.Builder
	for i, rec := range report.Records {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "error(%d): %s (%s)", rec.Ordinal, oneLine(rec.Diagnostic.Message), recordSource(rec, set, mode))
	}
	return b.String()
}

func recordSource(rec attrib.Record, set *source.FragmentSet, mode source.PathMode) string {
	switch {
	case !rec.Attributed():
		return "unattributed"
	case rec.IsMultiple():
		paths := make([]string, len(rec.Candidates))
		for i, id := range rec.Candidates {
			paths[i] = formatPath(set, id, mode)
		}
		return attrib.Multiple + ": " + strings.Join(paths, ", ")
	default:
		return formatPath(set, rec.FragmentID, mode)
	}
}

func oneLine(msg string) string {
	return strings.ReplaceAll(diag.SanitizeMessage(msg), "\n", " ")
}
