package ignore

import (
	"bufio"
	"io"
	"strings"
)

// FileName is the per-directory ignore file
const FileName = ".gitignore"

// Line is one pattern line of an ignore file
type Line struct {
	Pattern string
	Negate  bool
	LineNo  int
}

// ParseLines reads ignore file lines, dropping blanks and comments.
// "\#" and "\!" escape a leading comment or negation marker.
func ParseLines(r io.Reader) ([]Line, error) {
	s := bufio.NewScanner(r)
	var lines []Line
	lineNo := 0

	for s.Scan() {
		lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		line = trimTrailingSpaces(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		negate := false
		if strings.HasPrefix(line, "!") {
			negate = true
			line = line[1:]
		} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
			line = line[1:]
		}

		if line == "" {
			continue
		}

		lines = append(lines, Line{Pattern: line, Negate: negate, LineNo: lineNo})
	}

	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// trimTrailingSpaces removes trailing spaces unless escaped by "\"
func trimTrailingSpaces(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		if len(s) >= 2 && s[len(s)-2] == '\\' {
			return s[:len(s)-2] + " "
		}
		s = s[:len(s)-1]
	}
	return s
}
