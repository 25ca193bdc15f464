// Package checkstyle renders run results as Checkstyle XML, the format
// most CI annotation tools understand
package checkstyle

import (
	"io"

	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/ui/text"
	"github.com/beevik/etree"
)

// Version is the checkstyle format version written to the root element
const Version = "4.3"

// Source prefixes the source attribute of every reported problem
const Source = "basefmt."

// Renderer writes run results as XML. Other results fall back to plain
// text since they have no checkstyle representation.
type Renderer struct {
	output   io.Writer
	fallback *text.Renderer
}

// New creates a new checkstyle renderer
func New(output io.Writer) (*Renderer, error) {
	fallback, err := text.New(output)
	if err != nil {
		return nil, err
	}
	return &Renderer{output: output, fallback: fallback}, nil
}

// RenderResult renders a run result as a checkstyle document
func (r *Renderer) RenderResult(result interface{}) error {
	run, ok := result.(*types.RunResult)
	if !ok {
		return r.fallback.RenderResult(result)
	}

	doc := Build(run)
	doc.Indent(2)
	_, err := doc.WriteTo(r.output)
	return err
}

// Build creates the checkstyle document for a run. Every processed file
// gets a file element; problems are nested error elements.
func Build(run *types.RunResult) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("checkstyle")
	root.CreateAttr("version", Version)

	for _, f := range run.Files {
		file := root.CreateElement("file")
		file.CreateAttr("name", f.Path)

		severity, message := problem(f)
		if severity == "" {
			continue
		}
		e := file.CreateElement("error")
		e.CreateAttr("line", "1")
		e.CreateAttr("severity", severity)
		e.CreateAttr("message", message)
		e.CreateAttr("source", Source+string(f.Outcome))
	}

	return doc
}

func problem(f types.FileResult) (string, string) {
	switch f.Outcome {
	case types.OutcomeNonConformant:
		return "error", "not formatted"
	case types.OutcomeModified:
		return "info", "formatted"
	case types.OutcomeError:
		reason := f.Reason
		if reason == "" && f.Err != nil {
			reason = f.Err.Error()
		}
		return "error", reason
	}
	return "", ""
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	return r.fallback.RenderError(err)
}

// RenderMessage renders a simple message as plain text
func (r *Renderer) RenderMessage(msg string) error {
	return r.fallback.RenderMessage(msg)
}
