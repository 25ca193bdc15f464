// Package filesystem provides the file access basefmt needs on top of
// go-billy: the process wide OS filesystem, reading a file as text (or
// refusing it as binary) and replacing a file atomically.
//
// Production code uses NewOS, rooted at "/" so that absolute paths can be
// passed through unchanged; tests use memfs.
package filesystem
