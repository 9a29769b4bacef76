package diag

// Severity orders diagnostics; Bag.HasErrors looks for SevError and above.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{"info", "warning", "error"}

// Label is the lower-case name renderers print.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "error"
}

func (s Severity) String() string { return s.Label() }
