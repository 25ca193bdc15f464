// Package editorconfig resolves the basefmt rule properties for a file from
// the .editorconfig files found in its directory and every ancestor.
//
// Files are evaluated from the outermost directory to the file's own
// directory, and sections within a file from top to bottom. Every section
// whose glob matches the file overwrites the properties it sets, so the
// closest file and the last section win. A file declaring `root = true` in
// its preamble discards everything inherited from the directories above it.
//
// Property values keep three states. `true` enables a rule; `false`, `unset`
// and any unrecognised value disable it; a property no file mentions stays
// Unspecified and only becomes enabled when the caller resolves it.
//
//	root = true
//
//	[*]
//	insert_final_newline = true
//	trim_trailing_whitespace = true
//
//	[*.md]
//	trim_trailing_whitespace = false
//
//	[vendor/**]
//	trim_leading_newlines = unset
//
// An Index is filled once with Preload during discovery and is read-only
// afterwards, so Resolve can be called from any number of goroutines.
package editorconfig
