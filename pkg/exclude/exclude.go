// Package exclude applies the flat `exclude` glob list from .basefmt.toml.
//
// Patterns use doublestar syntax and are matched against the path relative
// to the project directory. A pattern without a `/` is also tried against
// the basename, so `*.min.js` excludes minified files at any depth. There is
// no negation and no cascading: the first matching pattern excludes the file.
package exclude

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
)

// Resolver matches paths against the exclude list
type Resolver struct {
	baseDir  string
	patterns []string
	warnings []string
}

// New validates patterns and returns a resolver for paths under baseDir.
// Invalid patterns are dropped and reported by Warnings.
func New(baseDir string, patterns []string) *Resolver {
	logger := logging.GetLogger("exclude")
	r := &Resolver{baseDir: filepath.Clean(baseDir)}

	for _, p := range patterns {
		p = strings.TrimPrefix(strings.TrimSpace(p), "./")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			err := errors.Newf(errors.ErrGlobSyntax, "invalid exclude pattern %q", p)
			logger.Warn().Err(err).Msg("Skipping exclude pattern")
			r.warnings = append(r.warnings, err.Error())
			continue
		}
		r.patterns = append(r.patterns, p)
	}

	logger.Debug().
		Str("baseDir", r.baseDir).
		Strs("patterns", r.patterns).
		Msg("Exclude list compiled")

	return r
}

// Patterns returns the valid patterns in declaration order
func (r *Resolver) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// Warnings returns one message per rejected pattern
func (r *Resolver) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// IsExcluded reports whether the file at p matches any pattern
func (r *Resolver) IsExcluded(p string) bool {
	_, ok := r.Match(p)
	return ok
}

// Match returns the first pattern excluding the file at p
func (r *Resolver) Match(p string) (string, bool) {
	rel, ok := r.rel(p)
	if !ok {
		return "", false
	}
	base := path.Base(rel)

	for _, pattern := range r.patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return pattern, true
		}
		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, base); matched {
				return pattern, true
			}
		}
	}
	return "", false
}

// IsExcludedDir reports whether every file below dir is excluded by a
// pattern of the form prefix/**, letting the walker skip the directory.
func (r *Resolver) IsExcludedDir(dir string) bool {
	rel, ok := r.rel(dir)
	if !ok {
		return false
	}
	for _, pattern := range r.patterns {
		prefix, found := strings.CutSuffix(pattern, "/**")
		if !found {
			continue
		}
		if matched, _ := doublestar.Match(prefix, rel); matched {
			return true
		}
	}
	return false
}

func (r *Resolver) rel(p string) (string, bool) {
	if len(r.patterns) == 0 {
		return "", false
	}
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p)), true
	}
	rel, err := filepath.Rel(r.baseDir, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// String renders the resolver for debug output
func (r *Resolver) String() string {
	return fmt.Sprintf("exclude(%s, %d patterns)", r.baseDir, len(r.patterns))
}
