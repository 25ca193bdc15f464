// Package types defines the data model shared by the basefmt packages: the
// tri-state rule values resolved per file, the per-file outcome of a run and
// the aggregated run result the reporters render.
package types
