package types

import (
	"sort"
	"time"
)

// Exit codes of a run
const (
	ExitOK          = 0
	ExitUnformatted = 1
	ExitFileError   = 2
)

// FileResult is the outcome of processing one file. Reason explains skipped
// and failed files.
type FileResult struct {
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	Rules   RuleSet `json:"rules"`
	Size    int64   `json:"size"`
	Reason  string  `json:"reason,omitempty"`
	Err     error   `json:"-"`
}

// RunResult is the aggregated result of one invocation
type RunResult struct {
	Check     bool          `json:"check"`
	Files     []FileResult  `json:"files"`
	Ignored   int           `json:"ignored"`
	Excluded  int           `json:"excluded"`
	Warnings  []string      `json:"warnings,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Sort orders files by path so reports are stable across runs
func (r *RunResult) Sort() {
	sort.Slice(r.Files, func(i, j int) bool {
		return r.Files[i].Path < r.Files[j].Path
	})
}

// Count returns the number of files with the given outcome
func (r *RunResult) Count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// TotalBytes returns the summed size of all processed files
func (r *RunResult) TotalBytes() uint64 {
	var total uint64
	for _, f := range r.Files {
		if f.Size > 0 {
			total += uint64(f.Size)
		}
	}
	return total
}

// ExitCode aggregates the worst outcome: any error gives ExitFileError,
// otherwise a non-conformant file in check mode gives ExitUnformatted.
func (r *RunResult) ExitCode() int {
	hasError := false
	unformatted := false

	for _, f := range r.Files {
		if f.Outcome.IsError() {
			hasError = true
		}
		if f.Outcome == OutcomeNonConformant {
			unformatted = true
		}
	}

	if hasError {
		return ExitFileError
	}
	if unformatted {
		return ExitUnformatted
	}
	return ExitOK
}

// PropertySource records where a resolved property value came from.
// File and Section are empty when the value was never configured.
type PropertySource struct {
	Property string   `json:"property"`
	Value    TriState `json:"value"`
	Raw      string   `json:"raw,omitempty"`
	File     string   `json:"file,omitempty"`
	Section  string   `json:"section,omitempty"`
}

// Origin describes where the value came from: "file [section]", or
// "default" for a property no configuration mentioned
func (p PropertySource) Origin() string {
	if p.File == "" {
		return "default"
	}
	return p.File + " [" + p.Section + "]"
}

// RulesResult holds the result of the 'rules' command for one file
type RulesResult struct {
	Path     string           `json:"path"`
	Ignored  bool             `json:"ignored"`
	Excluded bool             `json:"excluded"`
	Rules    RuleSet          `json:"rules"`
	Sources  []PropertySource `json:"sources"`
}

// InitResult holds the result of the 'init' command
type InitResult struct {
	Path        string `json:"path"`
	Overwritten bool   `json:"overwritten"`
}
