package constants

// DocStatus is the per-document state tracked during a run.
type DocStatus string

const (
	DocStatusPending    DocStatus = "pending"
	DocStatusProcessing DocStatus = "processing"
	DocStatusCompleted  DocStatus = "completed"
	DocStatusError      DocStatus = "error"
)

// Terminal reports whether no further transition is expected.
func (s DocStatus) Terminal() bool {
	return s == DocStatusCompleted || s == DocStatusError
}

// Progress bounds: extraction fills [0, ExtractionProgressCeiling], grouping the rest.
const (
	ExtractionProgressCeiling = 90.0
	ProgressComplete          = 100.0
)
