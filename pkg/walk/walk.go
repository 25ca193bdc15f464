// Package walk enumerates the candidate files below the paths given on the
// command line.
package walk

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Options tunes the walk
type Options struct {
	// Hidden includes dot files and directories found while walking.
	// Paths given explicitly are always included.
	Hidden bool

	// Visit is called once for every directory before any file in it is
	// returned, including the directories of explicitly given files.
	Visit func(dir string)

	// Prune reports whether a directory found while walking must be skipped
	Prune func(dir string) bool
}

// Files returns the regular files at or below roots, each once, in walk
// order. Roots that cannot be accessed are reported as errors without
// stopping the walk.
func Files(fsys billy.Filesystem, roots []string, opts Options) ([]string, []error) {
	logger := logging.GetLogger("walk")

	var files []string
	var errs []error
	seen := make(map[string]bool)
	visited := make(map[string]bool)

	visit := func(dir string) {
		if visited[dir] {
			return
		}
		visited[dir] = true
		if opts.Visit != nil {
			opts.Visit(dir)
		}
	}

	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, root := range roots {
		root = filepath.Clean(root)

		info, err := fsys.Stat(root)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrNotFound, "cannot access %s", root).
				WithDetail("path", root))
			continue
		}

		if !info.IsDir() {
			visit(filepath.Dir(root))
			add(root)
			continue
		}

		// util.Walk does not descend into a root that is itself a symlink,
		// so walk its target and report paths below the name given.
		target := resolveLinks(fsys, root)
		err = util.Walk(fsys, target, func(path string, info os.FileInfo, err error) error {
			path = rebase(path, target, root)
			if err != nil {
				errs = append(errs, errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", path).
					WithDetail("path", path))
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if info.IsDir() {
				if path != root {
					if !opts.Hidden && isHidden(info.Name()) {
						return filepath.SkipDir
					}
					if opts.Prune != nil && opts.Prune(path) {
						logger.Trace().Str("dir", path).Msg("Pruned directory")
						return filepath.SkipDir
					}
				}
				visit(path)
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}
			if !opts.Hidden && isHidden(info.Name()) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", root).
				WithDetail("path", root))
		}
	}

	logger.Debug().
		Int("files", len(files)).
		Int("dirs", len(visited)).
		Int("errors", len(errs)).
		Msg("Walk completed")

	return files, errs
}

// maxLinks bounds the symlink chain followed for a root
const maxLinks = 40

// resolveLinks follows root while it is a symlink. Filesystems without
// symlink support return root unchanged.
func resolveLinks(fsys billy.Filesystem, root string) string {
	links, ok := fsys.(billy.Symlink)
	if !ok {
		return root
	}
	path := root
	for i := 0; i < maxLinks; i++ {
		info, err := links.Lstat(path)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			return path
		}
		dest, err := links.Readlink(path)
		if err != nil {
			return path
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		path = filepath.Clean(dest)
	}
	return path
}

func rebase(path, from, to string) string {
	if from == to {
		return path
	}
	rel, err := filepath.Rel(from, path)
	if err != nil {
		return path
	}
	return filepath.Join(to, rel)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
