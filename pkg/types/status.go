package types

// Outcome is the per-file result of a run
type Outcome string

const (
	// OutcomeUnchanged means the file already conformed and was not written
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeModified means the file was rewritten
	OutcomeModified Outcome = "modified"

	// OutcomeConformant is the check mode equivalent of OutcomeUnchanged
	OutcomeConformant Outcome = "conformant"

	// OutcomeNonConformant means check mode found changes to make
	OutcomeNonConformant Outcome = "not_formatted"

	// OutcomeSkipped means the file is not text and was left alone
	OutcomeSkipped Outcome = "skipped"

	// OutcomeError means the file could not be read or written
	OutcomeError Outcome = "error"
)

// IsError reports whether the outcome is a per-file failure
func (o Outcome) IsError() bool {
	return o == OutcomeError
}

// NeedsFormatting reports whether the file was, or would have been, changed
func (o Outcome) NeedsFormatting() bool {
	return o == OutcomeModified || o == OutcomeNonConformant
}
