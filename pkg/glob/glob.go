package glob

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
)

// Dialect selects the pattern syntax understood by Compile
type Dialect int

const (
	// DialectGitignore follows .gitignore line semantics
	DialectGitignore Dialect = iota
	// DialectEditorConfig follows .editorconfig section header semantics
	DialectEditorConfig
)

// String returns the dialect name used in logs
func (d Dialect) String() string {
	switch d {
	case DialectGitignore:
		return "gitignore"
	case DialectEditorConfig:
		return "editorconfig"
	default:
		return "unknown"
	}
}

// Pattern is a compiled glob. It is immutable and safe for concurrent use.
type Pattern struct {
	raw      string
	dialect  Dialect
	anchored bool
	dirOnly  bool
	re       *regexp.Regexp
	// ranges holds the bounds of {n1..n2} groups in capture group order
	ranges []numRange
}

type numRange struct {
	min, max int64
}

// Compile parses pattern in the given dialect.
// Invalid patterns return an ErrGlobSyntax error.
func Compile(pattern string, dialect Dialect) (*Pattern, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrGlobSyntax, "empty pattern")
	}

	p := &Pattern{raw: pattern, dialect: dialect}
	body := pattern

	if dialect == DialectGitignore && strings.HasSuffix(body, "/") {
		p.dirOnly = true
		body = strings.TrimRight(body, "/")
	}
	if body == "" {
		return nil, errors.Newf(errors.ErrGlobSyntax, "pattern %q has no path component", pattern)
	}

	p.anchored = hasSeparator(body)
	body = strings.TrimPrefix(body, "/")
	if body == "" {
		return nil, errors.Newf(errors.ErrGlobSyntax, "pattern %q has no path component", pattern)
	}

	t := &translator{pat: body, dialect: dialect}
	expr, err := t.translate()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGlobSyntax, "invalid pattern %q", pattern)
	}

	prefix := "^"
	if !p.anchored {
		prefix = `^(?:.*/)?`
	}

	re, err := regexp.Compile(prefix + expr + "$")
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGlobSyntax, "invalid pattern %q", pattern)
	}

	p.re = re
	p.ranges = t.ranges
	return p, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(pattern string, dialect Dialect) *Pattern {
	p, err := Compile(pattern, dialect)
	if err != nil {
		panic(err)
	}
	return p
}

// Match compiles pattern and reports whether the file at path matches it
// relative to anchorDir.
func Match(pattern string, dialect Dialect, anchorDir, path string) (bool, error) {
	p, err := Compile(pattern, dialect)
	if err != nil {
		return false, err
	}
	return p.Match(anchorDir, path), nil
}

// String returns the source pattern
func (p *Pattern) String() string {
	return p.raw
}

// Dialect returns the dialect the pattern was compiled with
func (p *Pattern) Dialect() Dialect {
	return p.dialect
}

// DirOnly reports whether the pattern only matches directories
func (p *Pattern) DirOnly() bool {
	return p.dirOnly
}

// Anchored reports whether the pattern is matched against the full relative
// path instead of the basename.
func (p *Pattern) Anchored() bool {
	return p.anchored
}

// Match reports whether the regular file at path matches the pattern.
// Paths outside anchorDir never match.
func (p *Pattern) Match(anchorDir, path string) bool {
	return p.MatchPath(anchorDir, path, false)
}

// MatchPath is Match for a path that may be a directory
func (p *Pattern) MatchPath(anchorDir, path string, isDir bool) bool {
	rel, ok := Rel(anchorDir, path)
	if !ok {
		return false
	}
	return p.MatchRel(rel, isDir)
}

// MatchRel matches a slash separated path already relative to the anchor
func (p *Pattern) MatchRel(rel string, isDir bool) bool {
	if rel == "" || rel == "." {
		return false
	}
	if p.dirOnly && !isDir {
		return false
	}

	if len(p.ranges) == 0 {
		return p.re.MatchString(rel)
	}

	m := p.re.FindStringSubmatchIndex(rel)
	if m == nil {
		return false
	}
	for i, r := range p.ranges {
		start, end := m[2*(i+1)], m[2*(i+1)+1]
		if start < 0 {
			// group belongs to an alternative that did not participate
			continue
		}
		n, err := strconv.ParseInt(rel[start:end], 10, 64)
		if err != nil || n < r.min || n > r.max {
			return false
		}
	}
	return true
}

// Rel returns path relative to anchorDir using forward slashes.
// The second result is false when path is not inside anchorDir.
func Rel(anchorDir, path string) (string, bool) {
	if anchorDir == "" {
		return filepath.ToSlash(filepath.Clean(path)), true
	}
	rel, err := filepath.Rel(anchorDir, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// hasSeparator reports whether pattern contains an unescaped '/'
func hasSeparator(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '/':
			return true
		}
	}
	return false
}
