// Package format applies the three whitespace rules to file content.
//
// Rules run in a fixed order: leading blank lines are removed first, then
// trailing spaces and tabs on every line, then the end of file is normalized
// to exactly one line terminator. Line terminators ("\n" and "\r\n") are
// preserved line by line; the package never converts between styles.
//
// Apply is pure and idempotent: feeding its output back in with the same
// rule set reports no change.
package format
