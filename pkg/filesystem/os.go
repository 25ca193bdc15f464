package filesystem

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// NewOS returns the OS filesystem. Paths are absolute. The bound variant is
// used because it supports Chmod, which ReplaceAtomic needs.
func NewOS() billy.Filesystem {
	return osfs.New("/", osfs.WithBoundOS())
}
