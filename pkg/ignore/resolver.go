package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/glob"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

// Options configures the non per-directory rule sources
type Options struct {
	// GlobalExcludesFile is the path of core.excludesFile, empty for none
	GlobalExcludesFile string
}

type rule struct {
	pattern *glob.Pattern
	negate  bool
	anchor  string
	source  string
}

// Resolver decides whether paths under Root are ignored
type Resolver struct {
	fs       billy.Filesystem
	root     string
	base     []rule
	dirs     map[string][]rule
	warnings []string
	logger   zerolog.Logger
}

// New creates a resolver for the repository rooted at root and loads the
// global and repository wide exclude files. Missing files are not errors.
func New(fsys billy.Filesystem, root string, opts Options) *Resolver {
	r := &Resolver{
		fs:     fsys,
		root:   filepath.Clean(root),
		dirs:   make(map[string][]rule),
		logger: logging.GetLogger("ignore"),
	}

	if opts.GlobalExcludesFile != "" {
		r.base = append(r.base, r.loadFile(opts.GlobalExcludesFile, r.root)...)
	}
	r.base = append(r.base, r.loadFile(filepath.Join(r.root, ".git", "info", "exclude"), r.root)...)

	return r
}

// Root returns the directory rules are anchored to
func (r *Resolver) Root() string {
	return r.root
}

// Preload reads the .gitignore of dir and of its ancestors up to the root.
// It must not run concurrently with IsIgnored.
func (r *Resolver) Preload(dir string) {
	dir = filepath.Clean(dir)
	if !r.contains(dir) {
		return
	}
	for {
		if _, seen := r.dirs[dir]; seen {
			return
		}
		r.dirs[dir] = r.loadFile(filepath.Join(dir, FileName), dir)

		if dir == r.root {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// Warnings returns the problems found while loading ignore files
func (r *Resolver) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// IsIgnored reports whether the file at path is ignored
func (r *Resolver) IsIgnored(path string) bool {
	ignored, _ := r.decide(filepath.Clean(path), false)
	return ignored
}

// IsIgnoredDir reports whether the directory at path is ignored
func (r *Resolver) IsIgnoredDir(path string) bool {
	ignored, _ := r.decide(filepath.Clean(path), true)
	return ignored
}

// Explain is IsIgnored that also returns the file:line of the deciding
// rule. The source is empty when no rule matched.
func (r *Resolver) Explain(path string) (bool, string) {
	return r.decide(filepath.Clean(path), false)
}

func (r *Resolver) decide(path string, isDir bool) (bool, string) {
	rel, ok := glob.Rel(r.root, path)
	if !ok || rel == "." {
		return false, ""
	}

	for _, part := range strings.Split(rel, "/") {
		if part == ".git" {
			return true, ".git"
		}
	}

	// an ignored ancestor hides everything below it
	for dir := r.root; ; {
		next, done := nextDir(dir, path)
		if done {
			break
		}
		if hit := r.match(next, true); hit != nil && !hit.negate {
			return true, hit.source
		}
		dir = next
	}

	if hit := r.match(path, isDir); hit != nil {
		return !hit.negate, hit.source
	}
	return false, ""
}

// nextDir returns the child of dir on the way to path, or done when that
// child is path itself.
func nextDir(dir, path string) (string, bool) {
	rel, _ := filepath.Rel(dir, path)
	first, _, found := strings.Cut(filepath.ToSlash(rel), "/")
	if !found {
		return "", true
	}
	return filepath.Join(dir, first), false
}

// match evaluates rule sources from the highest precedence down and returns
// the first (that is, last applicable) matching rule.
func (r *Resolver) match(path string, isDir bool) *rule {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if !r.contains(dir) {
			break
		}
		if hit := lastMatch(r.dirs[dir], path, isDir); hit != nil {
			return hit
		}
		if dir == r.root {
			break
		}
	}
	return lastMatch(r.base, path, isDir)
}

func lastMatch(rules []rule, path string, isDir bool) *rule {
	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].pattern.MatchPath(rules[i].anchor, path, isDir) {
			return &rules[i]
		}
	}
	return nil
}

func (r *Resolver) contains(dir string) bool {
	_, ok := glob.Rel(r.root, dir)
	return ok
}

// loadFile compiles the rules of one ignore file anchored at anchor
func (r *Resolver) loadFile(path, anchor string) []rule {
	fh, err := r.fs.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.warn(fmt.Sprintf("%s: cannot read: %v", path, err))
		}
		return nil
	}
	defer func() { _ = fh.Close() }()

	lines, err := ParseLines(fh)
	if err != nil {
		r.warn(fmt.Sprintf("%s: cannot read: %v", path, err))
		return nil
	}

	rules := make([]rule, 0, len(lines))
	for _, l := range lines {
		source := fmt.Sprintf("%s:%d", path, l.LineNo)
		p, err := glob.Compile(l.Pattern, glob.DialectGitignore)
		if err != nil {
			r.warn(fmt.Sprintf("%s: skipping pattern: %v", source, err))
			continue
		}
		rules = append(rules, rule{pattern: p, negate: l.Negate, anchor: anchor, source: source})
	}

	r.logger.Debug().
		Str("path", path).
		Int("rules", len(rules)).
		Msg("Loaded ignore file")

	return rules
}

func (r *Resolver) warn(msg string) {
	r.logger.Warn().Msg(msg)
	r.warnings = append(r.warnings, msg)
}
