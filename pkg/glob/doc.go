// Package glob implements the path pattern engine shared by .gitignore files
// and .editorconfig section headers.
//
// Both dialects compile to a single anchored regular expression evaluated
// against a slash separated path relative to the pattern's anchor directory
// (the directory holding the file the pattern came from).
//
// # Common syntax
//
//   - `*` matches any run of characters except `/`
//   - `**` matches any run of characters including `/`
//   - `?` matches one character except `/`
//   - `[abc]`, `[a-z]`, `[!abc]` match one character from (or not from) a class
//   - `\x` matches `x` literally
//
// # Gitignore dialect
//
// A pattern containing a `/` anywhere but at its end is anchored to the
// anchor directory; otherwise it matches the basename at any depth. A trailing
// `/` restricts the pattern to directories. `**/` at the start matches any
// leading directories, `/**` at the end matches everything inside, and `/**/`
// matches zero or more directories. Any other `**` behaves like `*`.
//
// # EditorConfig dialect
//
// A pattern without `/` matches the basename at any depth; a pattern with a
// `/` is anchored to the .editorconfig directory. In addition to the common
// syntax, `{a,b,c}` matches any of the comma separated alternatives and
// `{n1..n2}` matches an integer between n1 and n2 inclusive.
//
// In both dialects `dir/*` matches direct children of dir only, while
// `dir/**` matches every descendant.
package glob
