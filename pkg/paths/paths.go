package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for basefmt
	EnvConfigDir = "BASEFMT_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// File and directory names
const (
	// AppDirName is the directory name used under the XDG base dirs
	AppDirName = "basefmt"

	// ProjectConfigFile is the name of the project configuration file
	ProjectConfigFile = ".basefmt.toml"

	// UserConfigFile is the name of the user configuration file
	UserConfigFile = "config.toml"
)

// ProjectDir determines the project directory from the path arguments:
// the first argument when it is a directory, its parent otherwise, and the
// working directory when there are no arguments. The result is absolute.
func ProjectDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = ExpandHome(args[0])
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", dir)
	}
	return abs, nil
}

// FindRepoRoot returns the worktree root of the git repository containing
// dir. The boolean is false when dir is not inside a repository or the
// repository is bare.
func FindRepoRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}

// GlobalExcludesFile returns the path of the user's global git excludes
// file. core.excludesFile from the global git config wins; otherwise git's
// default of $XDG_CONFIG_HOME/git/ignore is used. The file may not exist.
func GlobalExcludesFile() string {
	if cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope); err == nil && cfg.Raw != nil {
		if file := cfg.Raw.Section("core").Options.Get("excludesfile"); file != "" {
			return ExpandHome(file)
		}
	}
	return filepath.Join(xdg.ConfigHome, "git", "ignore")
}

// UserConfigDir returns the directory holding the user configuration
func UserConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// UserConfigPath returns the path of the user configuration file
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), UserConfigFile)
}

// ProjectConfigPath returns the path of the project configuration file in
// projectDir
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ProjectConfigFile)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}
