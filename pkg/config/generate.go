package config

import (
	"strings"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/paths"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pelletier/go-toml/v2"
)

const projectHeader = `# basefmt project configuration.
#
# Per-file rules (insert_final_newline, trim_trailing_whitespace,
# trim_leading_newlines) live in .editorconfig. This file only controls
# which files are visited. Uncomment a line to change its value.

`

type projectTemplate struct {
	Exclude          []string `toml:"exclude" comment:"Glob patterns, relative to this file, that are never formatted.\nA pattern without a slash also matches file names at any depth."`
	RespectGitignore bool     `toml:"respect_gitignore" comment:"Skip files ignored by git."`
	Hidden           bool     `toml:"hidden" comment:"Walk hidden files and directories."`
	Jobs             int      `toml:"jobs" comment:"Files processed in parallel. 0 uses one worker per CPU."`
}

// GenerateConfigContent renders the default project configuration with
// every value commented out
func GenerateConfigContent() (string, error) {
	defaults, err := Defaults()
	if err != nil {
		return "", err
	}

	exclude := defaults.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	data, err := toml.Marshal(projectTemplate{
		Exclude:          exclude,
		RespectGitignore: defaults.RespectGitignore,
		Hidden:           defaults.Hidden,
		Jobs:             defaults.Jobs,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render default configuration")
	}

	return projectHeader + commentOutConfigValues(string(data)), nil
}

// WriteProjectConfig writes the default .basefmt.toml into dir. An existing
// file is only replaced when force is set.
func WriteProjectConfig(fsys billy.Filesystem, dir string, force bool) (*types.InitResult, error) {
	path := paths.ProjectConfigPath(dir)

	_, err := fsys.Stat(path)
	exists := err == nil
	if exists && !force {
		return nil, errors.Newf(errors.ErrAlreadyExists, "%s already exists (use --force to overwrite)", path).
			WithDetail("path", path)
	}

	content, err := GenerateConfigContent()
	if err != nil {
		return nil, err
	}

	if err := util.WriteFile(fsys, path, []byte(content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path).
			WithDetail("path", path)
	}

	return &types.InitResult{Path: path, Overwritten: exists}, nil
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		// Keep section headers as-is
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && !strings.Contains(trimmed, "=") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
