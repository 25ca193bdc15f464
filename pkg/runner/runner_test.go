// pkg/runner/runner_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real temp directories
// PURPOSE: Test discovery, filtering, formatting and result aggregation

package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/basefmt/pkg/config"
	"github.com/arthur-debert/basefmt/pkg/paths"
	"github.com/arthur-debert/basefmt/pkg/runner"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messy = "\n\nfoo   \nbar\n\n\n"

// setup isolates the run from the user's git and basefmt configuration and
// returns an empty project directory
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(home, "basefmt"))
	for _, key := range []string{"EXCLUDE", "RESPECT_GITIGNORE", "HIDDEN", "JOBS"} {
		t.Setenv(config.EnvPrefix+key, "")
		require.NoError(t, os.Unsetenv(config.EnvPrefix+key))
	}
	xdg.Reload()
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func run(t *testing.T, dir string, check bool, args ...string) *types.RunResult {
	t.Helper()
	result, err := runner.Run(context.Background(), runner.Options{
		Paths: args,
		Check: check,
		Dir:   dir,
	})
	require.NoError(t, err)
	return result
}

func outcomes(result *types.RunResult) map[string]types.Outcome {
	m := make(map[string]types.Outcome)
	for _, f := range result.Files {
		m[f.Path] = f.Outcome
	}
	return m
}

func TestRunFormatsFiles(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, "a.txt"), messy)
	writeFile(t, filepath.Join(dir, "b.txt"), "clean\n")

	result := run(t, dir, false)

	assert.Equal(t, map[string]types.Outcome{
		"a.txt": types.OutcomeModified,
		"b.txt": types.OutcomeUnchanged,
	}, outcomes(result))
	assert.Equal(t, "foo\nbar\n", readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, types.ExitOK, result.ExitCode())
	assert.False(t, result.Check)

	again := run(t, dir, false)
	assert.Equal(t, 0, again.Count(types.OutcomeModified))
}

func TestRunCheckModeDoesNotWrite(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, "a.txt"), messy)
	writeFile(t, filepath.Join(dir, "b.txt"), "clean\n")

	result := run(t, dir, true)

	assert.Equal(t, map[string]types.Outcome{
		"a.txt": types.OutcomeNonConformant,
		"b.txt": types.OutcomeConformant,
	}, outcomes(result))
	assert.Equal(t, messy, readFile(t, filepath.Join(dir, "a.txt")))
	assert.Equal(t, types.ExitUnformatted, result.ExitCode())
}

func TestRunHonorsEditorConfigCascade(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".editorconfig"),
		"root = true\n\n[*.md]\ntrim_leading_newlines = false\n")
	writeFile(t, filepath.Join(dir, "docs", ".editorconfig"),
		"[*.txt]\ninsert_final_newline = false\n")
	writeFile(t, filepath.Join(dir, "a.md"), messy)
	writeFile(t, filepath.Join(dir, "docs", "b.txt"), "x  \n\n\n")
	writeFile(t, filepath.Join(dir, "docs", "c.md"), messy)

	result := run(t, dir, false)

	assert.Equal(t, "\n\nfoo\nbar\n", readFile(t, filepath.Join(dir, "a.md")))
	assert.Equal(t, "x\n\n\n", readFile(t, filepath.Join(dir, "docs", "b.txt")))
	assert.Equal(t, "\n\nfoo\nbar\n", readFile(t, filepath.Join(dir, "docs", "c.md")))

	for _, f := range result.Files {
		if f.Path == filepath.Join("docs", "b.txt") {
			assert.Equal(t, types.Disabled, f.Rules.FinalNewline)
			assert.Equal(t, types.Unspecified, f.Rules.TrimTrailing)
		}
	}
}

func TestRunRootMarkerStopsInheritance(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".editorconfig"),
		"root = true\n\n[*]\ntrim_trailing_whitespace = false\n")
	writeFile(t, filepath.Join(dir, "sub", ".editorconfig"), "root = true\n")
	writeFile(t, filepath.Join(dir, "top.txt"), "a  \n")
	writeFile(t, filepath.Join(dir, "sub", "inner.txt"), "a  \n")

	run(t, dir, false)

	assert.Equal(t, "a  \n", readFile(t, filepath.Join(dir, "top.txt")))
	assert.Equal(t, "a\n", readFile(t, filepath.Join(dir, "sub", "inner.txt")))
}

func TestRunIgnoreAndExclude(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".gitignore"), "*.log\n!keep.log\nbuild/\n")
	writeFile(t, filepath.Join(dir, ".basefmt.toml"), "exclude = [\"vendor/**\", \"*.min.js\"]\n")
	for _, name := range []string{
		"a.log", "keep.log", "build/x.txt", "vendor/y.txt", "lib/app.min.js", "z.txt",
	} {
		writeFile(t, filepath.Join(dir, name), messy)
	}

	result := run(t, dir, true)

	assert.Equal(t, map[string]types.Outcome{
		"keep.log": types.OutcomeNonConformant,
		"z.txt":    types.OutcomeNonConformant,
	}, outcomes(result))
	assert.Equal(t, 2, result.Ignored)
	assert.Equal(t, 2, result.Excluded)
}

func TestRunWithoutGitignore(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(dir, "a.log"), messy)

	result, err := runner.Run(context.Background(), runner.Options{
		Check:     true,
		Dir:       dir,
		Overrides: map[string]interface{}{config.KeyRespectGitignore: false},
	})
	require.NoError(t, err)

	assert.Equal(t, types.OutcomeNonConformant, outcomes(result)["a.log"])
	assert.Zero(t, result.Ignored)
}

func TestRunHiddenFiles(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".hidden", "a.txt"), messy)
	writeFile(t, filepath.Join(dir, ".env"), messy)

	result := run(t, dir, true)
	assert.Empty(t, result.Files)

	t.Run("explicit file is always processed", func(t *testing.T) {
		result := run(t, dir, true, ".env")
		assert.Equal(t, types.OutcomeNonConformant, outcomes(result)[".env"])
	})

	t.Run("hidden option walks dot entries", func(t *testing.T) {
		result, err := runner.Run(context.Background(), runner.Options{
			Check:     true,
			Dir:       dir,
			Overrides: map[string]interface{}{config.KeyHidden: true},
		})
		require.NoError(t, err)
		got := outcomes(result)
		assert.Equal(t, types.OutcomeNonConformant, got[".env"])
		assert.Equal(t, types.OutcomeNonConformant, got[filepath.Join(".hidden", "a.txt")])
	})
}

func TestRunSkipsBinaryFiles(t *testing.T) {
	dir := setup(t)
	binary := []byte("\x00\x01\x02   \n\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img.bin"), binary, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latin1.txt"), []byte("caf\xe9  \n"), 0644))

	result := run(t, dir, false)

	assert.Equal(t, map[string]types.Outcome{
		"img.bin":    types.OutcomeSkipped,
		"latin1.txt": types.OutcomeSkipped,
	}, outcomes(result))
	assert.Equal(t, types.ExitOK, result.ExitCode())

	data, err := os.ReadFile(filepath.Join(dir, "img.bin"))
	require.NoError(t, err)
	assert.Equal(t, binary, data)
}

func TestRunMissingPathIsFileError(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "ok\n")

	result := run(t, dir, false, "a.txt", "missing.txt")

	got := outcomes(result)
	assert.Equal(t, types.OutcomeUnchanged, got["a.txt"])
	assert.Equal(t, types.OutcomeError, got["missing.txt"])
	assert.Equal(t, types.ExitFileError, result.ExitCode())

	for _, f := range result.Files {
		if f.Path == "missing.txt" {
			assert.Equal(t, "no such file or directory", f.Reason)
		}
	}
}

func TestRunUnreadableFileDoesNotStopOthers(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := setup(t)
	writeFile(t, filepath.Join(dir, "a.txt"), messy)
	writeFile(t, filepath.Join(dir, "locked.txt"), messy)
	require.NoError(t, os.Chmod(filepath.Join(dir, "locked.txt"), 0))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(dir, "locked.txt"), 0644) })

	result := run(t, dir, false)

	got := outcomes(result)
	assert.Equal(t, types.OutcomeModified, got["a.txt"])
	assert.Equal(t, types.OutcomeError, got["locked.txt"])
	assert.Equal(t, types.ExitFileError, result.ExitCode())
}

func TestRunPreservesPermissions(t *testing.T) {
	dir := setup(t)
	script := filepath.Join(dir, "run.sh")
	writeFile(t, script, "#!/bin/sh  \necho hi")
	require.NoError(t, os.Chmod(script, 0755))

	run(t, dir, false)

	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	assert.Equal(t, "#!/bin/sh\necho hi\n", readFile(t, script))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestRunInParallel(t *testing.T) {
	dir := setup(t)
	n := runner.ParallelThreshold * 3
	for i := 0; i < n; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("d%d", i%4), fmt.Sprintf("f%02d.txt", i)), messy)
	}

	result, err := runner.Run(context.Background(), runner.Options{
		Dir:       dir,
		Overrides: map[string]interface{}{config.KeyJobs: 3},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, n)
	assert.Equal(t, n, result.Count(types.OutcomeModified))
	for i := 1; i < len(result.Files); i++ {
		assert.Less(t, result.Files[i-1].Path, result.Files[i].Path)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := setup(t)
	for i := 0; i < runner.ParallelThreshold*2; i++ {
		writeFile(t, filepath.Join(dir, fmt.Sprintf("f%02d.txt", i)), messy)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Run(ctx, runner.Options{Dir: dir})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Files)
	assert.Equal(t, messy, readFile(t, filepath.Join(dir, "f00.txt")))
}

func TestRunReportsConfigWarnings(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".basefmt.toml"), "exclude = [\"[\"]\n")
	writeFile(t, filepath.Join(dir, ".editorconfig"), "[*.txt\nfoo = bar\n")
	writeFile(t, filepath.Join(dir, "a.txt"), messy)

	result := run(t, dir, false)

	assert.Len(t, result.Warnings, 2)
	assert.Equal(t, "foo\nbar\n", readFile(t, filepath.Join(dir, "a.txt")))
}

func TestRunExplicitConfigMissing(t *testing.T) {
	dir := setup(t)
	_, err := runner.Run(context.Background(), runner.Options{
		Dir:        dir,
		ConfigFile: filepath.Join(dir, "nope.toml"),
	})
	assert.Error(t, err)
}

func TestRules(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, ".editorconfig"),
		"root = true\n\n[*.md]\ntrim_trailing_whitespace = false\n")
	writeFile(t, filepath.Join(dir, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(dir, ".basefmt.toml"), "exclude = [\"gen/**\"]\n")

	results, warnings, err := runner.Rules(runner.Options{
		Paths: []string{"doc.md", "debug.log", "gen/a.go"},
		Dir:   dir,
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, results, 3)

	md := results[0]
	assert.Equal(t, "doc.md", md.Path)
	assert.False(t, md.Ignored)
	assert.False(t, md.Excluded)
	assert.Equal(t, types.Disabled, md.Rules.TrimTrailing)
	assert.Equal(t, types.Unspecified, md.Rules.FinalNewline)

	var trailing types.PropertySource
	for _, src := range md.Sources {
		if src.Property == types.PropTrimTrailingWhitespace {
			trailing = src
		}
	}
	assert.Equal(t, filepath.Join(dir, ".editorconfig"), trailing.File)
	assert.Equal(t, "*.md", trailing.Section)

	assert.True(t, results[1].Ignored)
	assert.True(t, results[2].Excluded)
}

func TestRunFollowsSymlinkedDirectoryArgument(t *testing.T) {
	dir := setup(t)
	writeFile(t, filepath.Join(dir, "real", "a.txt"), "a   \n")
	require.NoError(t, os.Symlink("real", filepath.Join(dir, "link")))

	result := run(t, dir, true, "link")

	assert.Equal(t, map[string]types.Outcome{
		filepath.Join("link", "a.txt"): types.OutcomeNonConformant,
	}, outcomes(result))
	assert.Equal(t, types.ExitUnformatted, result.ExitCode())
}
