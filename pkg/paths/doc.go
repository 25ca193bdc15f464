// Package paths resolves the locations basefmt reads from.
//
// It handles:
//
//   - Project directory discovery from the command line paths
//   - Repository root discovery (the directory holding .git)
//   - The user's global git excludes file (core.excludesFile)
//   - XDG locations for the user configuration
//
// # Environment Variables
//
//   - BASEFMT_CONFIG_DIR: Override the user config directory
//     (default: $XDG_CONFIG_HOME/basefmt)
//   - HOME: Used to expand ~ in configured paths
//
// # Usage
//
//	projectDir, err := paths.ProjectDir(args)
//	if err != nil {
//	    return err
//	}
//	root, ok := paths.FindRepoRoot(projectDir)
//	if !ok {
//	    root = projectDir
//	}
package paths
