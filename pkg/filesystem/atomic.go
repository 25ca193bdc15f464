package filesystem

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/go-git/go-billy/v5"
)

// tempPrefix marks temporary files created next to their target
const tempPrefix = ".basefmt-"

// ReplaceAtomic writes data to a temporary file in the directory of path,
// gives it perm and renames it over path. On failure path is left untouched
// and the temporary file is removed.
func ReplaceAtomic(fsys billy.Filesystem, path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := fsys.TempFile(filepath.Dir(path), tempPrefix)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create temporary file for %s", path).
			WithDetail("path", path)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmpName).
			WithDetail("path", path)
	}

	if syncer, ok := tmp.(interface{ Sync() error }); ok {
		if err = syncer.Sync(); err != nil {
			_ = tmp.Close()
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot sync %s", tmpName).
				WithDetail("path", path)
		}
	}

	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", tmpName).
			WithDetail("path", path)
	}

	changer, ok := fsys.(billy.Change)
	if !ok {
		return errors.Newf(errors.ErrFileWrite, "cannot set permissions on %s: filesystem does not support chmod", tmpName).
			WithDetail("path", path)
	}
	if err = changer.Chmod(tmpName, perm.Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot set permissions on %s", tmpName).
			WithDetail("path", path)
	}

	if err = fsys.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path).
			WithDetail("path", path)
	}

	return nil
}
