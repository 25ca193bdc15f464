package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/ui"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(check bool) *types.RunResult {
	files := []types.FileResult{
		{Path: "a.txt", Outcome: types.OutcomeConformant, Size: 100},
		{Path: "b.txt", Outcome: types.OutcomeNonConformant, Size: 2048},
		{Path: "c.bin", Outcome: types.OutcomeSkipped, Size: 10},
		{Path: "d.txt", Outcome: types.OutcomeError, Reason: "permission denied"},
	}
	if !check {
		files[0].Outcome = types.OutcomeUnchanged
		files[1].Outcome = types.OutcomeModified
	}
	return &types.RunResult{
		Check:    check,
		Files:    files,
		Ignored:  3,
		Excluded: 1,
		Warnings: []string{"bad glob"},
		Duration: 12 * time.Millisecond,
	}
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		name        string
		format      ui.Format
		expectError bool
	}{
		{name: "terminal", format: ui.FormatTerminal},
		{name: "text", format: ui.FormatText},
		{name: "json", format: ui.FormatJSON},
		{name: "checkstyle", format: ui.FormatCheckstyle},
		{name: "auto with buffer", format: ui.FormatAuto},
		{name: "invalid format", format: ui.Format(999), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			renderer, err := ui.NewRenderer(tt.format, buf)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, renderer)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, renderer)

			require.NoError(t, renderer.RenderMessage("hello"))
			assert.Contains(t, buf.String(), "hello")
		})
	}
}

func TestTextRenderer(t *testing.T) {
	t.Run("check mode lists problems only", func(t *testing.T) {
		buf := &bytes.Buffer{}
		r, err := ui.NewRenderer(ui.FormatText, buf)
		require.NoError(t, err)

		require.NoError(t, r.RenderResult(sampleRun(true)))

		assert.Equal(t, strings.Join([]string{
			"warning: bad glob",
			"b.txt: not formatted",
			"d.txt: permission denied",
		}, "\n")+"\n", buf.String())
	})

	t.Run("format mode does not list modified files", func(t *testing.T) {
		buf := &bytes.Buffer{}
		r, err := ui.NewRenderer(ui.FormatText, buf)
		require.NoError(t, err)

		require.NoError(t, r.RenderResult(sampleRun(false)))

		assert.NotContains(t, buf.String(), "b.txt")
		assert.Contains(t, buf.String(), "d.txt: permission denied")
	})

	t.Run("rules", func(t *testing.T) {
		buf := &bytes.Buffer{}
		r, err := ui.NewRenderer(ui.FormatText, buf)
		require.NoError(t, err)

		require.NoError(t, r.RenderResult([]types.RulesResult{{
			Path:     "docs/a.md",
			Excluded: true,
			Sources: []types.PropertySource{
				{Property: types.PropTrimTrailingWhitespace, Value: types.Disabled, File: "/r/.editorconfig", Section: "*.md"},
				{Property: types.PropInsertFinalNewline, Value: types.Unspecified},
			},
		}}))

		out := buf.String()
		assert.Contains(t, out, "docs/a.md:\n")
		assert.Contains(t, out, "excluded by configuration")
		assert.Contains(t, out, "/r/.editorconfig [*.md]")
		assert.Contains(t, out, "default")
		assert.NotContains(t, out, "ignored by git")
	})

	t.Run("init", func(t *testing.T) {
		buf := &bytes.Buffer{}
		r, err := ui.NewRenderer(ui.FormatText, buf)
		require.NoError(t, err)

		require.NoError(t, r.RenderResult(&types.InitResult{Path: "/p/.basefmt.toml", Overwritten: true}))
		assert.Equal(t, "overwrote /p/.basefmt.toml\n", buf.String())
	})
}

func TestTerminalRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatTerminal, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleRun(true)))

	out := buf.String()
	assert.Contains(t, out, "b.txt")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "1 of 4 files not formatted")
	assert.Contains(t, out, "2.2 kB")
	assert.Contains(t, out, "3 ignored")
	assert.NotContains(t, out, "a.txt")
}

func TestJSONRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleRun(true)))

	var decoded struct {
		Check    bool `json:"check"`
		ExitCode int  `json:"exit_code"`
		Files    []struct {
			Path    string `json:"path"`
			Outcome string `json:"outcome"`
			Reason  string `json:"reason"`
		} `json:"files"`
		Ignored int `json:"ignored"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.True(t, decoded.Check)
	assert.Equal(t, types.ExitFileError, decoded.ExitCode)
	require.Len(t, decoded.Files, 4)
	assert.Equal(t, "not_formatted", decoded.Files[1].Outcome)
	assert.Equal(t, "permission denied", decoded.Files[3].Reason)
	assert.Equal(t, 3, decoded.Ignored)
}

func TestCheckstyleRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatCheckstyle, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleRun(true)))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.SelectElement("checkstyle")
	require.NotNil(t, root)
	assert.Equal(t, "4.3", root.SelectAttrValue("version", ""))

	files := root.SelectElements("file")
	require.Len(t, files, 4)
	assert.Empty(t, files[0].SelectElements("error"))

	notFormatted := files[1].SelectElement("error")
	require.NotNil(t, notFormatted)
	assert.Equal(t, "error", notFormatted.SelectAttrValue("severity", ""))
	assert.Equal(t, "basefmt.not_formatted", notFormatted.SelectAttrValue("source", ""))

	failed := files[3].SelectElement("error")
	require.NotNil(t, failed)
	assert.Equal(t, "permission denied", failed.SelectAttrValue("message", ""))

	t.Run("non run results fall back to text", func(t *testing.T) {
		buf.Reset()
		require.NoError(t, r.RenderResult(&types.InitResult{Path: "x"}))
		assert.Equal(t, "created x\n", buf.String())
	})
}
