package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

// fileSchema is the shape of a config file, used to validate keys and
// value types before the file is merged
type fileSchema struct {
	Exclude          []string `toml:"exclude"`
	RespectGitignore *bool    `toml:"respect_gitignore"`
	Hidden           *bool    `toml:"hidden"`
	Jobs             *int     `toml:"jobs"`
}

// checkStrict decodes data against fileSchema. Unknown keys become notes;
// syntax and type errors are returned as CONFIG_PARSE errors.
func checkStrict(path string, data []byte) ([]string, error) {
	var schema fileSchema
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	err := dec.Decode(&schema)
	if err == nil {
		return nil, nil
	}

	var strict *toml.StrictMissingError
	if stderrors.As(err, &strict) {
		notes := make([]string, 0, len(strict.Errors))
		for i := range strict.Errors {
			row, col := strict.Errors[i].Position()
			key := strings.Join(strict.Errors[i].Key(), ".")
			notes = append(notes, fmt.Sprintf("%s:%d:%d: unknown key %q", path, row, col, key))
		}
		return notes, nil
	}

	var decodeErr *toml.DecodeError
	if stderrors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return nil, errors.Newf(errors.ErrConfigParse, "%s:%d:%d: %s", path, row, col, decodeErr.Error()).
			WithDetail("path", path).
			WithDetail("line", row).
			WithDetail("column", col)
	}

	return nil, errors.Wrapf(err, errors.ErrConfigParse, "%s: invalid configuration", path).
		WithDetail("path", path)
}
