package editorconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
)

// Index holds the parsed .editorconfig files of every directory seen during
// discovery, keyed by directory.
type Index struct {
	fs       billy.Filesystem
	files    map[string]*File
	warnings []string
	logger   zerolog.Logger
}

// NewIndex creates an empty index reading files from fsys. Paths given to
// the index are absolute paths inside fsys.
func NewIndex(fsys billy.Filesystem) *Index {
	return &Index{
		fs:     fsys,
		files:  make(map[string]*File),
		logger: logging.GetLogger("editorconfig"),
	}
}

// Preload loads the .editorconfig of dir and of each ancestor until a root
// file or the filesystem root is reached. It must not run concurrently with
// Resolve.
func (ix *Index) Preload(dir string) {
	dir = filepath.Clean(dir)
	for {
		if _, seen := ix.files[dir]; seen {
			return
		}

		f := ix.load(dir)
		ix.files[dir] = f
		if f != nil && f.Root {
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// load reads and parses the .editorconfig in dir. Missing, unreadable and
// malformed files all yield nil; the latter two are recorded as warnings.
func (ix *Index) load(dir string) *File {
	path := filepath.Join(dir, FileName)

	fh, err := ix.fs.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			ix.warn(fmt.Sprintf("%s: cannot read: %v", path, err))
		}
		return nil
	}
	defer func() { _ = fh.Close() }()

	f, err := Parse(fh, path)
	if err != nil {
		ix.warn(fmt.Sprintf("%s: skipping malformed file: %v", path, err))
		return nil
	}

	for _, w := range f.Warnings {
		ix.warn(w)
	}

	ix.logger.Debug().
		Str("path", path).
		Bool("root", f.Root).
		Int("sections", len(f.Sections)).
		Msg("Loaded editorconfig")

	return f
}

func (ix *Index) warn(msg string) {
	ix.logger.Warn().Msg(msg)
	ix.warnings = append(ix.warnings, msg)
}

// Warnings returns the problems found while loading files
func (ix *Index) Warnings() []string {
	return append([]string(nil), ix.warnings...)
}

// Chain returns the files that apply to entries of dir, outermost first.
// Files above the closest root file are left out.
func (ix *Index) Chain(dir string) []*File {
	var chain []*File
	dir = filepath.Clean(dir)
	for {
		if f := ix.files[dir]; f != nil {
			chain = append(chain, f)
			if f.Root {
				break
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Resolve computes the rule set for the file at path. Properties never
// mentioned stay Unspecified.
func (ix *Index) Resolve(path string) types.RuleSet {
	return ix.fold(path, nil)
}

// Explain is Resolve that also reports which file and section set each
// property. Properties never set are reported without a source.
func (ix *Index) Explain(path string) (types.RuleSet, []types.PropertySource) {
	last := make(map[string]types.PropertySource)
	rs := ix.fold(path, func(src types.PropertySource) {
		last[src.Property] = src
	})

	sources := make([]types.PropertySource, 0, len(types.Properties))
	for _, prop := range types.Properties {
		src, ok := last[prop]
		if !ok {
			src = types.PropertySource{Property: prop, Value: types.Unspecified}
		}
		sources = append(sources, src)
	}
	return rs, sources
}

func (ix *Index) fold(path string, record func(types.PropertySource)) types.RuleSet {
	path = filepath.Clean(path)

	var rs types.RuleSet
	for _, f := range ix.Chain(filepath.Dir(path)) {
		for i := range f.Sections {
			section := &f.Sections[i]
			if !section.Matches(f.Dir, path) {
				continue
			}
			for _, prop := range section.Properties {
				if !types.IsRuleProperty(prop.Key) {
					continue
				}
				value := ParseValue(prop.Value)
				rs.Set(prop.Key, value)
				if record != nil {
					record(types.PropertySource{
						Property: prop.Key,
						Value:    value,
						Raw:      prop.Value,
						File:     f.Path,
						Section:  section.Header,
					})
				}
			}
		}
	}
	return rs
}
