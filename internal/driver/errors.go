package driver

import (
	"errors"
	"fmt"

	"gqlmerge/internal/attrib"
)

// ErrNoFragments is returned when there is nothing to merge.
var ErrNoFragments = errors.New("no schema fragments to merge")

// FailureKind classifies a failed merge.
type FailureKind uint8

const (
	// FailureAttributed: every diagnostic was localized to fragment(s).
	FailureAttributed FailureKind = iota + 1
	// FailurePartial: at least one diagnostic stayed unattributed.
	FailurePartial
)

func (k FailureKind) String() string {
	switch k {
	case FailureAttributed:
		return "attributed"
	case FailurePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// MergeError is returned when the full merge fails. It carries the complete
// attribution report, unattributed records included.
type MergeError struct {
	Report *attrib.Report
}

func (e *MergeError) Kind() FailureKind {
	if e.Report.Partial() {
		return FailurePartial
	}
	return FailureAttributed
}

func (e *MergeError) Error() string {
	unattributed := len(e.Report.Unattributed())
	if unattributed == 0 {
		return fmt.Sprintf("schema merge failed: %d errors", e.Report.Total)
	}
	return fmt.Sprintf("schema merge failed: %d errors, %d unattributed", e.Report.Total, unattributed)
}
