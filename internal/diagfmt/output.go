package diagfmt

import (
	"gqlmerge/internal/attrib"
	"gqlmerge/internal/diag"
	"gqlmerge/internal/source"
)

// LocationOutput is a rendered diagnostic position.
type LocationOutput struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// RecordOutput представляет одну запись отчёта для JSON/YAML.
type RecordOutput struct {
	Ordinal    int             `json:"ordinal" yaml:"ordinal"`
	Message    string          `json:"message" yaml:"message"`
	Stage      string          `json:"stage" yaml:"stage"`
	Phase      string          `json:"phase" yaml:"phase"`
	Fragment   *string         `json:"fragment" yaml:"fragment"`
	Candidates []string        `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Blame      string          `json:"blame,omitempty" yaml:"blame,omitempty"`
	Location   *LocationOutput `json:"location,omitempty" yaml:"location,omitempty"`
}

// ReportOutput представляет корневую структуру вывода отчёта.
type ReportOutput struct {
	Records      []RecordOutput `json:"records" yaml:"records"`
	Total        int            `json:"total" yaml:"total"`
	Unattributed int            `json:"unattributed" yaml:"unattributed"`
}

// BuildReportOutput renders fragment ids with mode. A nil fragment means
// the record is unattributed. set may be nil.
func BuildReportOutput(report *attrib.Report, set *source.FragmentSet, mode source.PathMode, limit int) ReportOutput {
	out := ReportOutput{Records: make([]RecordOutput, 0, len(report.Records)), Total: report.Total}
	for i, rec := range report.Records {
		if !rec.Attributed() {
			out.Unattributed++
		}
		if limit > 0 && i >= limit {
			continue
		}
		r := RecordOutput{
			Ordinal: rec.Ordinal,
			Message: diag.SanitizeMessage(rec.Diagnostic.Message),
			Stage:   rec.Diagnostic.Stage.String(),
			Phase:   rec.Phase.String(),
		}
		if rec.Attributed() {
			fragment := rec.FragmentID
			if !rec.IsMultiple() {
				fragment = formatPath(set, rec.FragmentID, mode)
			}
			r.Fragment = &fragment
			r.Blame = formatPath(set, rec.Blame, mode)
			for _, id := range rec.Candidates {
				r.Candidates = append(r.Candidates, formatPath(set, id, mode))
			}
		}
		if loc := rec.Diagnostic.Location; loc.Known() {
			r.Location = &LocationOutput{File: formatPath(set, loc.File, mode), Line: loc.Line, Column: loc.Column}
		}
		out.Records = append(out.Records, r)
	}
	return out
}

func formatPath(set *source.FragmentSet, id string, mode source.PathMode) string {
	if set == nil || id == "" {
		return id
	}
	return set.FormatPath(id, mode)
}
