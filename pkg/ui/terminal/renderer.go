// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/ui/styles"
	"github.com/arthur-debert/basefmt/pkg/ui/text"
)

// Renderer provides rich terminal output using the style registry
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *types.RunResult:
		return r.write(renderRun(v))
	case []types.RulesResult:
		var b strings.Builder
		for i := range v {
			renderRules(&b, &v[i])
		}
		return r.write(b.String())
	case *types.InitResult:
		verb := "Created"
		if v.Overwritten {
			verb = "Overwrote"
		}
		return r.write(styles.Render("Success", verb) + " " + styles.Render("FilePath", v.Path) + "\n")
	default:
		return r.write(fmt.Sprintf("%+v\n", result))
	}
}

func renderRun(result *types.RunResult) string {
	var b strings.Builder

	for _, w := range result.Warnings {
		b.WriteString(styles.Render("Warning", "warning: "+w) + "\n")
	}

	for _, f := range result.Files {
		label, style := outcomeLabel(f.Outcome)
		if label == "" {
			continue
		}
		line := styles.Render(style, label) + f.Path
		if f.Outcome.IsError() {
			reason := f.Reason
			if reason == "" && f.Err != nil {
				reason = f.Err.Error()
			}
			line += " " + styles.Render("Muted", reason)
		}
		b.WriteString(line + "\n")
	}

	summary := text.Summary(result)
	switch result.ExitCode() {
	case types.ExitOK:
		b.WriteString(styles.Render("Success", "✓") + " " + summary + "\n")
	case types.ExitUnformatted:
		b.WriteString(styles.Render("Warning", "!") + " " + summary + "\n")
	default:
		b.WriteString(styles.Render("Error", "✗") + " " + summary + "\n")
	}

	return b.String()
}

func outcomeLabel(o types.Outcome) (string, string) {
	switch o {
	case types.OutcomeModified:
		return "formatted", "Modified"
	case types.OutcomeNonConformant:
		return "not formatted", "NotFormatted"
	case types.OutcomeError:
		return "error", "Failed"
	case types.OutcomeSkipped:
		return "skipped", "Skipped"
	}
	return "", ""
}

func renderRules(b *strings.Builder, res *types.RulesResult) {
	b.WriteString(styles.Render("Header", res.Path) + "\n")
	if res.Ignored {
		b.WriteString("  " + styles.Render("Warning", "ignored by git") + "\n")
	}
	if res.Excluded {
		b.WriteString("  " + styles.Render("Warning", "excluded by configuration") + "\n")
	}
	for _, src := range res.Sources {
		b.WriteString(styles.Render("Property", src.Property))
		b.WriteString(styles.Render(stateStyle(src.Value), src.Value.String()))
		b.WriteString(styles.Render("Source", src.Origin()) + "\n")
	}
}

func stateStyle(t types.TriState) string {
	switch t {
	case types.Enabled:
		return "Enabled"
	case types.Disabled:
		return "Disabled"
	}
	return "Unspecified"
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	return r.write(styles.Render("Error", "Error:") + " " + err.Error() + "\n")
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.write(styles.Render("Info", msg) + "\n")
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.output, s)
	return err
}
