package filesystem

import (
	"bytes"
	"os"
	"unicode/utf8"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// sniffLen is how much of a file is checked for NUL bytes
const sniffLen = 8000

// ReadText reads the file at path. Content that contains NUL bytes or is not
// valid UTF-8 is rejected with ErrEncoding so callers can skip it.
func ReadText(fsys billy.Filesystem, path string) ([]byte, os.FileInfo, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).
			WithDetail("path", path)
	}
	if !info.Mode().IsRegular() {
		return nil, info, errors.Newf(errors.ErrInvalidInput, "%s is not a regular file", path).
			WithDetail("path", path)
	}

	content, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, info, errors.Wrapf(err, errors.ErrFileRead, "cannot read %s", path).
			WithDetail("path", path)
	}

	if LooksBinary(content) {
		return nil, info, errors.Newf(errors.ErrEncoding, "%s is not a UTF-8 text file", path).
			WithDetail("path", path)
	}

	return content, info, nil
}

// LooksBinary reports whether content should not be treated as text
func LooksBinary(content []byte) bool {
	sniff := content
	if len(sniff) > sniffLen {
		sniff = sniff[:sniffLen]
	}
	if bytes.IndexByte(sniff, 0) >= 0 {
		return true
	}
	return !utf8.Valid(content)
}
