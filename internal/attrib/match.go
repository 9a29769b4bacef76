package attrib

import (
	"strings"

	"gqlmerge/internal/diag"
)

// matches reports whether probe text explains the full-merge text.
// The engine may wrap a per-fragment message with merge context, so a
// substring is enough.
func matches(full, probe string) bool {
	return probe != "" && strings.Contains(full, probe)
}

// entry is one full-merge diagnostic still waiting for attribution.
type entry struct {
	diag diag.Diagnostic
}

// claim finds the first pending entry d explains. Positioned diagnostics
// that match no text fall back to the first pending positioned entry.
func claim(pending []entry, taken []bool, d diag.Diagnostic) int {
	for i := range pending {
		if !taken[i] && matches(pending[i].diag.Message, d.Message) {
			return i
		}
	}
	if !d.HasPosition() {
		return -1
	}
	for i := range pending {
		if !taken[i] && pending[i].diag.HasPosition() {
			return i
		}
	}
	return -1
}

// covered marks the entries still explained by a probe's diagnostics.
// Each probe diagnostic covers at most one entry; exact matches are
// assigned before substring ones so a short message cannot steal an
// entry that has an exact twin.
func covered(snapshot []entry, probe []diag.Diagnostic) []bool {
	cov := make([]bool, len(snapshot))
	used := make([]bool, len(probe))
	for p := range probe {
		for i := range snapshot {
			if !cov[i] && snapshot[i].diag.Message == probe[p].Message {
				cov[i], used[p] = true, true
				break
			}
		}
	}
	for p := range probe {
		if used[p] {
			continue
		}
		for i := range snapshot {
			if !cov[i] && matches(snapshot[i].diag.Message, probe[p].Message) {
				cov[i] = true
				break
			}
		}
	}
	return cov
}
