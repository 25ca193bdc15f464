// Package runner drives a formatting run: it loads configuration, builds the
// ignore, exclude and EditorConfig resolvers once, discovers the candidate
// files and processes them on a bounded pool of workers.
package runner

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/arthur-debert/basefmt/pkg/config"
	"github.com/arthur-debert/basefmt/pkg/editorconfig"
	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/exclude"
	"github.com/arthur-debert/basefmt/pkg/filesystem"
	"github.com/arthur-debert/basefmt/pkg/format"
	"github.com/arthur-debert/basefmt/pkg/ignore"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/arthur-debert/basefmt/pkg/paths"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/walk"
	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ParallelThreshold is the number of files below which a run does not start
// any worker goroutines
const ParallelThreshold = 10

// Options configures a run
type Options struct {
	// Paths are the files and directories to process. Empty means ".".
	Paths []string

	// Check reports conformance without writing any file
	Check bool

	// Dir is the directory relative paths are resolved against and reported
	// relative to. Defaults to the working directory.
	Dir string

	// ProjectDir fixes the directory .basefmt.toml is looked up in instead of
	// deriving it from Paths. Watch reruns pass the directory of the initial
	// run so that a batch of changed files keeps the project configuration.
	ProjectDir string

	// ConfigFile, NoUserConfig and Overrides are passed to config.Load
	ConfigFile   string
	NoUserConfig bool
	Overrides    map[string]interface{}

	// FS is the filesystem files are read from and written to. Defaults to
	// the OS filesystem; paths inside it are absolute.
	FS billy.Filesystem
}

// Session holds the configuration and resolvers of one run. Building a
// session reads configuration only; ignore and EditorConfig files are
// loaded lazily while discovering files.
type Session struct {
	fs         billy.Filesystem
	cfg        *config.Config
	check      bool
	dir        string
	projectDir string
	ignore     *ignore.Resolver
	exclude    *exclude.Resolver
	index      *editorconfig.Index
	logger     zerolog.Logger
}

// NewSession loads the configuration for opts and prepares the resolvers.
// It fails only when the configuration cannot be loaded at all; malformed
// config files are skipped with a warning.
func NewSession(opts Options) (*Session, error) {
	logger := logging.GetLogger("runner")

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", dir)
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	s := &Session{
		fs:     fsys,
		check:  opts.Check,
		dir:    dir,
		logger: logger,
	}

	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir, err = paths.ProjectDir(s.absolute(opts.Paths))
		if err != nil {
			return nil, err
		}
	}
	s.projectDir = projectDir

	cfg, err := config.Load(config.Options{
		ProjectDir:   projectDir,
		ConfigFile:   opts.ConfigFile,
		NoUserConfig: opts.NoUserConfig,
		Overrides:    opts.Overrides,
	})
	if err != nil {
		return nil, err
	}
	s.cfg = cfg

	if cfg.RespectGitignore {
		root, ok := paths.FindRepoRoot(projectDir)
		if !ok {
			root = projectDir
		}
		s.ignore = ignore.New(fsys, root, ignore.Options{
			GlobalExcludesFile: paths.GlobalExcludesFile(),
		})
	}
	s.exclude = exclude.New(cfg.BaseDir, cfg.Exclude)
	s.index = editorconfig.NewIndex(fsys)

	logger.Debug().
		Str("projectDir", projectDir).
		Bool("check", s.check).
		Bool("respectGitignore", cfg.RespectGitignore).
		Bool("hidden", cfg.Hidden).
		Int("jobs", s.Jobs()).
		Msg("Session ready")

	return s, nil
}

// Config returns the effective configuration
func (s *Session) Config() *config.Config {
	return s.cfg
}

// ProjectDir returns the directory .basefmt.toml was looked up in
func (s *Session) ProjectDir() string {
	return s.projectDir
}

// Jobs returns the number of workers a run uses
func (s *Session) Jobs() int {
	if s.cfg.Jobs > 0 {
		return s.cfg.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Run builds a session for opts and processes opts.Paths
func Run(ctx context.Context, opts Options) (*types.RunResult, error) {
	s, err := NewSession(opts)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, opts.Paths)
}

// Run discovers the files below roots and formats or checks each of them.
// Per-file problems are recorded in the result; the error is non-nil only
// when ctx is cancelled, in which case the result holds the files finished
// so far.
func (s *Session) Run(ctx context.Context, roots []string) (*types.RunResult, error) {
	start := time.Now()
	result := &types.RunResult{
		Check:     s.check,
		Timestamp: start,
	}

	finished := logging.LogOperationStart(s.logger, "discover")
	files := s.discover(roots, result)
	finished()

	s.logger.Info().
		Int("files", len(files)).
		Int("ignored", result.Ignored).
		Int("excluded", result.Excluded).
		Msg("Discovered files")

	err := s.process(ctx, files, result)

	result.Warnings = append(result.Warnings, s.Warnings()...)
	result.Sort()
	result.Duration = time.Since(start)

	s.logger.Info().
		Int("files", len(result.Files)).
		Int("modified", result.Count(types.OutcomeModified)).
		Int("notFormatted", result.Count(types.OutcomeNonConformant)).
		Int("errors", result.Count(types.OutcomeError)).
		Dur("duration", result.Duration).
		Msg("Run completed")

	return result, err
}

// Warnings collects the problems found in configuration sources so far
func (s *Session) Warnings() []string {
	warnings := append([]string(nil), s.cfg.Warnings...)
	if s.ignore != nil {
		warnings = append(warnings, s.ignore.Warnings()...)
	}
	warnings = append(warnings, s.exclude.Warnings()...)
	warnings = append(warnings, s.index.Warnings()...)
	return warnings
}

// discover walks roots, loading ignore and EditorConfig files on the way,
// and returns the files that are neither ignored nor excluded. Roots that
// cannot be accessed are recorded as errors in result.
func (s *Session) discover(roots []string, result *types.RunResult) []string {
	opts := walk.Options{
		Hidden: s.cfg.Hidden,
		Visit: func(dir string) {
			if s.ignore != nil {
				s.ignore.Preload(dir)
			}
			s.index.Preload(dir)
		},
		Prune: func(dir string) bool {
			if filepath.Base(dir) == ".git" {
				return true
			}
			if s.ignore != nil && s.ignore.IsIgnoredDir(dir) {
				result.Ignored++
				return true
			}
			if s.exclude.IsExcludedDir(dir) {
				result.Excluded++
				return true
			}
			return false
		},
	}

	candidates, errs := walk.Files(s.fs, s.absolute(roots), opts)

	for _, err := range errs {
		path, _ := errors.GetErrorDetails(err)["path"].(string)
		result.Files = append(result.Files, types.FileResult{
			Path:    s.display(path),
			Outcome: types.OutcomeError,
			Reason:  reason(err),
			Err:     err,
		})
	}

	files := make([]string, 0, len(candidates))
	for _, path := range candidates {
		if s.ignore != nil && s.ignore.IsIgnored(path) {
			s.logger.Trace().Str("path", path).Msg("Ignored")
			result.Ignored++
			continue
		}
		if s.exclude.IsExcluded(path) {
			s.logger.Trace().Str("path", path).Msg("Excluded")
			result.Excluded++
			continue
		}
		files = append(files, path)
	}
	return files
}

// process runs processFile over files. The resolvers are read-only from here
// on, so workers share them without locking.
func (s *Session) process(ctx context.Context, files []string, result *types.RunResult) error {
	var mu sync.Mutex
	record := func(res types.FileResult) {
		mu.Lock()
		result.Files = append(result.Files, res)
		mu.Unlock()
	}

	if len(files) < ParallelThreshold {
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			record(s.processFile(path))
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Jobs())
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record(s.processFile(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// processFile formats or checks one file. A file is either fully replaced
// or left untouched.
func (s *Session) processFile(path string) types.FileResult {
	res := types.FileResult{Path: s.display(path)}

	content, info, err := filesystem.ReadText(s.fs, path)
	if info != nil {
		res.Size = info.Size()
	}
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrEncoding) {
			s.logger.Debug().Str("path", path).Msg("Skipping non-text file")
			res.Outcome = types.OutcomeSkipped
			res.Reason = "not a UTF-8 text file"
			return res
		}
		s.logger.Warn().Err(err).Str("path", path).Msg("Cannot read file")
		res.Outcome = types.OutcomeError
		res.Reason = reason(err)
		res.Err = err
		return res
	}

	res.Rules = s.index.Resolve(path)
	out, changed := format.Apply(content, res.Rules)

	if s.check {
		res.Outcome = types.OutcomeConformant
		if changed {
			res.Outcome = types.OutcomeNonConformant
		}
		return res
	}

	if !changed {
		res.Outcome = types.OutcomeUnchanged
		return res
	}

	if err := filesystem.ReplaceAtomic(s.fs, path, out, info.Mode()); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Cannot write file")
		res.Outcome = types.OutcomeError
		res.Reason = reason(err)
		res.Err = err
		return res
	}

	s.logger.Debug().Str("path", path).Msg("Formatted")
	res.Outcome = types.OutcomeModified
	res.Size = int64(len(out))
	return res
}

// absolute resolves paths against the session directory. No paths means
// the session directory itself.
func (s *Session) absolute(list []string) []string {
	if len(list) == 0 {
		return []string{s.dir}
	}
	abs := make([]string, len(list))
	for i, p := range list {
		p = paths.ExpandHome(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.dir, p)
		}
		abs[i] = filepath.Clean(p)
	}
	return abs
}

// display returns path relative to the session directory when it lies
// below it
func (s *Session) display(path string) string {
	if path == "" {
		return path
	}
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// reason extracts the short cause of a per-file error, such as
// "permission denied"
func reason(err error) string {
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	var bfErr *errors.BasefmtError
	if stderrors.As(err, &bfErr) {
		if bfErr.Wrapped != nil {
			return bfErr.Wrapped.Error()
		}
		return bfErr.Message
	}
	return err.Error()
}
