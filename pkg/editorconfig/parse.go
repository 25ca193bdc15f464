package editorconfig

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/glob"
	"github.com/arthur-debert/basefmt/pkg/types"
)

// FileName is the name of the property files looked up in each directory
const FileName = ".editorconfig"

// File is a parsed .editorconfig file. Dir is the anchor directory section
// globs are relative to; Warnings lists sections skipped for invalid globs.
type File struct {
	Path     string
	Dir      string
	Root     bool
	Sections []Section
	Warnings []string
}

// Section is one [glob] block. Pattern is nil when the glob failed to
// compile, in which case the section never matches.
type Section struct {
	Header     string
	Pattern    *glob.Pattern
	Properties []Property
	Line       int
}

// Property is a key/value pair in file order. Keys are lowercased.
type Property struct {
	Key   string
	Value string
	Line  int
}

// Matches reports whether the section applies to path
func (s *Section) Matches(dir, path string) bool {
	return s.Pattern != nil && s.Pattern.Match(dir, path)
}

// Parse reads an .editorconfig from r. path is the location of the file and
// determines the anchor directory.
func Parse(r io.Reader, path string) (*File, error) {
	f := &File{Path: path, Dir: filepath.Dir(path)}

	var current *Section
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		line := strings.TrimSpace(text)

		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			if line[len(line)-1] != ']' || len(line) < 3 {
				return nil, parseError(path, lineNo, "malformed section header %q", line)
			}
			header := line[1 : len(line)-1]
			f.Sections = append(f.Sections, Section{Header: header, Line: lineNo})
			current = &f.Sections[len(f.Sections)-1]

			pattern, err := glob.Compile(header, glob.DialectEditorConfig)
			if err != nil {
				f.Warnings = append(f.Warnings, fmt.Sprintf("%s:%d: skipping section: %v", path, lineNo, err))
				continue
			}
			current.Pattern = pattern
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, parseError(path, lineNo, "expected key = value, got %q", line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" {
			return nil, parseError(path, lineNo, "empty key in %q", line)
		}

		if current == nil {
			// preamble: only root is meaningful
			if key == "root" {
				f.Root = strings.EqualFold(value, "true")
			}
			continue
		}
		current.Properties = append(current.Properties, Property{Key: key, Value: value, Line: lineNo})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileRead, "failed to read %s", path)
	}

	return f, nil
}

// ParseValue interprets a raw property value. Only "true" (in any case)
// enables a rule; "false", "unset" and anything else disable it.
func ParseValue(raw string) types.TriState {
	if strings.EqualFold(strings.TrimSpace(raw), "true") {
		return types.Enabled
	}
	return types.Disabled
}

func parseError(path string, line int, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrConfigParse, "%s:%d: %s", path, line, fmt.Sprintf(format, args...)).
		WithDetail("path", path).
		WithDetail("line", line)
}
