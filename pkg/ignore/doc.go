// Package ignore answers whether git would ignore a path.
//
// Rules come from, in increasing precedence: the user's global excludes file
// (core.excludesFile), the repository's .git/info/exclude, and every
// .gitignore from the repository root down to the path's directory. The last
// matching rule wins, so deeper files override shallower ones and later lines
// override earlier ones. A rule prefixed with `!` re-includes a path that an
// earlier rule ignored.
//
// As in git, a path inside an ignored directory is ignored no matter what
// negations say about the path itself, and anything under a `.git`
// directory is always ignored.
//
// The resolver is filled with Preload while files are being discovered and
// is read-only afterwards.
package ignore
