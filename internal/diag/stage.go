package diag

// Stage identifies the merge step that produced a diagnostic.
type Stage uint8

const (
	StageUnknown Stage = iota
	// StageSyntax: a fragment failed to parse on its own.
	StageSyntax
	// StageSchema: fragments parsed but the combined schema is invalid.
	StageSchema
	// StageOperation: an operation document failed validation against the schema.
	StageOperation
)

func (s Stage) String() string {
	switch s {
	case StageSyntax:
		return "syntax"
	case StageSchema:
		return "schema"
	case StageOperation:
		return "operation"
	}
	return "unknown"
}
