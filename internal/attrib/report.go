package attrib

import (
	"gqlmerge/internal/diag"
)

// Multiple is the FragmentID of a record blamed on two or more fragments.
const Multiple = "multiple"

// Phase says which heuristic resolved a record.
type Phase uint8

const (
	PhaseIsolation Phase = iota + 1
	PhaseExclusion
	PhaseTail
)

func (p Phase) String() string {
	switch p {
	case PhaseIsolation:
		return "isolation"
	case PhaseExclusion:
		return "exclusion"
	case PhaseTail:
		return "unattributed"
	default:
		return "unknown"
	}
}

// Record is one full-merge diagnostic and its attribution.
type Record struct {
	Ordinal    int
	Diagnostic diag.Diagnostic
	// FragmentID is the fragment id, Multiple, or "" when unattributed.
	FragmentID string
	// Candidates lists every implicated fragment in fragment order.
	Candidates []string
	// Blame is the single fragment to point at: the attributed fragment, or
	// the last candidate for Multiple records.
	Blame string
	Phase Phase
}

// Attributed reports whether any heuristic localized the record.
func (r Record) Attributed() bool {
	return r.FragmentID != ""
}

// IsMultiple reports whether the record has several candidates.
func (r Record) IsMultiple() bool {
	return r.FragmentID == Multiple
}

// Report covers every diagnostic of a failed full merge exactly once.
type Report struct {
	Records []Record
	Total   int
}

// Unattributed returns the records neither heuristic could localize.
func (r *Report) Unattributed() []Record {
	if r == nil {
		return nil
	}
	var out []Record
	for _, rec := range r.Records {
		if !rec.Attributed() {
			out = append(out, rec)
		}
	}
	return out
}

// Partial reports whether at least one record is unattributed.
func (r *Report) Partial() bool {
	return len(r.Unattributed()) > 0
}

// ByFragment groups records by candidate fragment. A Multiple record is
// listed under each of its candidates.
func (r *Report) ByFragment() map[string][]Record {
	out := make(map[string][]Record)
	if r == nil {
		return out
	}
	for _, rec := range r.Records {
		for _, id := range rec.Candidates {
			out[id] = append(out[id], rec)
		}
	}
	return out
}

// Messages returns diagnostic texts in ordinal order.
func (r *Report) Messages() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Diagnostic.Message
	}
	return out
}
