package types

// TriState is a rule value that keeps "explicitly off" apart from "never
// configured". Only Resolve collapses it to a boolean.
type TriState int

const (
	// Unspecified means no configuration mentioned the property
	Unspecified TriState = iota
	// Enabled means the property was set to true
	Enabled
	// Disabled means the property was set to false, unset or an invalid value
	Disabled
)

// String returns the lowercase state name
func (t TriState) String() string {
	switch t {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unspecified"
	}
}

// Resolve applies the final default: Unspecified is treated as Enabled
func (t TriState) Resolve() bool {
	return t != Disabled
}

// MarshalText renders the state name, used by the JSON report
func (t TriState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Property names understood in .editorconfig files
const (
	PropInsertFinalNewline     = "insert_final_newline"
	PropTrimTrailingWhitespace = "trim_trailing_whitespace"
	PropTrimLeadingNewlines    = "trim_leading_newlines"
)

// Properties lists the rule properties in application order
var Properties = []string{
	PropTrimLeadingNewlines,
	PropTrimTrailingWhitespace,
	PropInsertFinalNewline,
}

// RuleSet is the resolved rule triple for one file
type RuleSet struct {
	FinalNewline TriState `json:"insert_final_newline"`
	TrimTrailing TriState `json:"trim_trailing_whitespace"`
	TrimLeading  TriState `json:"trim_leading_newlines"`
}

// AllEnabled returns a rule set with every rule explicitly enabled
func AllEnabled() RuleSet {
	return RuleSet{FinalNewline: Enabled, TrimTrailing: Enabled, TrimLeading: Enabled}
}

// Get returns the value of a property by name. Unknown names are Unspecified.
func (r RuleSet) Get(prop string) TriState {
	switch prop {
	case PropInsertFinalNewline:
		return r.FinalNewline
	case PropTrimTrailingWhitespace:
		return r.TrimTrailing
	case PropTrimLeadingNewlines:
		return r.TrimLeading
	}
	return Unspecified
}

// Set stores a property value by name and reports whether the name is a
// rule property.
func (r *RuleSet) Set(prop string, value TriState) bool {
	switch prop {
	case PropInsertFinalNewline:
		r.FinalNewline = value
	case PropTrimTrailingWhitespace:
		r.TrimTrailing = value
	case PropTrimLeadingNewlines:
		r.TrimLeading = value
	default:
		return false
	}
	return true
}

// IsRuleProperty reports whether name is one of the three rule properties
func IsRuleProperty(name string) bool {
	switch name {
	case PropInsertFinalNewline, PropTrimTrailingWhitespace, PropTrimLeadingNewlines:
		return true
	}
	return false
}
