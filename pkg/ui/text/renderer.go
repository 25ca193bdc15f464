// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// Renderer provides plain text output without colors or styling. Run
// results are printed as one "path: problem" line per file that needs
// attention, which keeps the output easy to grep.
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *types.RunResult:
		return r.renderRun(v)
	case []types.RulesResult:
		for i := range v {
			if err := r.renderRules(&v[i]); err != nil {
				return err
			}
		}
		return nil
	case *types.InitResult:
		verb := "created"
		if v.Overwritten {
			verb = "overwrote"
		}
		_, err := fmt.Fprintf(r.output, "%s %s\n", verb, v.Path)
		return err
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderRun(result *types.RunResult) error {
	for _, w := range result.Warnings {
		if _, err := fmt.Fprintf(r.output, "warning: %s\n", w); err != nil {
			return err
		}
	}
	for _, f := range result.Files {
		line, ok := FileLine(f)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderRules(res *types.RulesResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", res.Path)
	if res.Ignored {
		b.WriteString("  ignored by git\n")
	}
	if res.Excluded {
		b.WriteString("  excluded by configuration\n")
	}
	for _, src := range res.Sources {
		fmt.Fprintf(&b, "  %-26s %-12s %s\n", src.Property, src.Value, src.Origin())
	}
	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// FileLine returns the report line for a file, or false when the outcome
// needs no attention
func FileLine(f types.FileResult) (string, bool) {
	switch f.Outcome {
	case types.OutcomeNonConformant:
		return f.Path + ": not formatted", true
	case types.OutcomeError:
		reason := f.Reason
		if reason == "" && f.Err != nil {
			reason = f.Err.Error()
		}
		return f.Path + ": " + reason, true
	}
	return "", false
}

// Summary describes a run in one line, e.g.
// "formatted 2 of 14 files (3.1 kB), 1 error, 40 ignored in 12ms"
func Summary(result *types.RunResult) string {
	total := len(result.Files)
	var b strings.Builder

	if result.Check {
		fmt.Fprintf(&b, "%s of %s not formatted",
			humanize.Comma(int64(result.Count(types.OutcomeNonConformant))),
			english.Plural(total, "file", ""))
	} else {
		fmt.Fprintf(&b, "formatted %s of %s",
			humanize.Comma(int64(result.Count(types.OutcomeModified))),
			english.Plural(total, "file", ""))
	}
	fmt.Fprintf(&b, " (%s)", humanize.Bytes(result.TotalBytes()))

	if n := result.Count(types.OutcomeError); n > 0 {
		fmt.Fprintf(&b, ", %s", english.Plural(n, "error", ""))
	}
	if n := result.Count(types.OutcomeSkipped); n > 0 {
		fmt.Fprintf(&b, ", %d skipped", n)
	}
	if result.Ignored > 0 {
		fmt.Fprintf(&b, ", %d ignored", result.Ignored)
	}
	if result.Excluded > 0 {
		fmt.Fprintf(&b, ", %d excluded", result.Excluded)
	}
	fmt.Fprintf(&b, " in %s", result.Duration.Round(time.Millisecond))

	return b.String()
}
