package format

import (
	"bytes"

	"github.com/arthur-debert/basefmt/pkg/types"
)

// Apply runs every enabled rule over content. changed is false iff the
// returned bytes are identical to content.
func Apply(content []byte, rules types.RuleSet) ([]byte, bool) {
	out := content

	if rules.TrimLeading.Resolve() {
		out = TrimLeadingBlankLines(out)
	}
	if rules.TrimTrailing.Resolve() {
		out = TrimTrailingWhitespace(out)
	}
	if rules.FinalNewline.Resolve() {
		out = EnsureFinalNewline(out)
	}

	return out, !bytes.Equal(out, content)
}

// Conforms reports whether content is already formatted under rules
func Conforms(content []byte, rules types.RuleSet) bool {
	_, changed := Apply(content, rules)
	return !changed
}

// TrimLeadingBlankLines drops every line at the start of content that holds
// only whitespace, stopping at the first line with other characters.
func TrimLeadingBlankLines(content []byte) []byte {
	start := 0
	for start < len(content) {
		nl := bytes.IndexByte(content[start:], '\n')
		var line []byte
		if nl < 0 {
			line = content[start:]
		} else {
			line = content[start : start+nl]
		}
		if !isBlank(line) {
			break
		}
		if nl < 0 {
			start = len(content)
			break
		}
		start += nl + 1
	}
	return content[start:]
}

// TrimTrailingWhitespace removes spaces and tabs before each line terminator
// and at the end of the last line. The terminators are kept as they are.
func TrimTrailingWhitespace(content []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(content))

	for len(content) > 0 {
		nl := bytes.IndexByte(content, '\n')
		var line, term []byte
		if nl < 0 {
			line, content = content, nil
		} else {
			line, term, content = content[:nl], content[nl:nl+1], content[nl+1:]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line, term = line[:len(line)-1], []byte("\r\n")
			}
		}
		buf.Write(bytes.TrimRight(line, " \t"))
		buf.Write(term)
	}
	return buf.Bytes()
}

// EnsureFinalNewline makes content end with exactly one line terminator,
// reusing the style of the last terminator in the file ("\n" when there is
// none). Content made only of terminators collapses to empty, and empty
// content stays empty.
func EnsureFinalNewline(content []byte) []byte {
	term := lastTerminator(content)

	end := len(content)
	for end > 0 && content[end-1] == '\n' {
		end--
		if end > 0 && content[end-1] == '\r' {
			end--
		}
	}
	if end == 0 {
		return content[:0]
	}

	out := make([]byte, 0, end+len(term))
	out = append(out, content[:end]...)
	return append(out, term...)
}

// lastTerminator returns "\r\n" or "\n" depending on the last line ending
func lastTerminator(content []byte) string {
	nl := bytes.LastIndexByte(content, '\n')
	if nl > 0 && content[nl-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// isBlank reports whether line contains only whitespace
func isBlank(line []byte) bool {
	for _, c := range line {
		switch c {
		case ' ', '\t', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}
