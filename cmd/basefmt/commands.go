package basefmt

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/arthur-debert/basefmt/internal/version"
	"github.com/arthur-debert/basefmt/pkg/cobrax/topics"
	"github.com/arthur-debert/basefmt/pkg/config"
	"github.com/arthur-debert/basefmt/pkg/filesystem"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/arthur-debert/basefmt/pkg/runner"
	"github.com/arthur-debert/basefmt/pkg/types"
	"github.com/arthur-debert/basefmt/pkg/ui"
	"github.com/arthur-debert/basefmt/pkg/watch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// ExitError reports a run whose result was printed but that must end with
// a non-zero exit code
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// globalFlags holds the persistent flags shared by all commands
type globalFlags struct {
	verbosity    int
	hidden       bool
	noGitignore  bool
	jobs         int
	configFile   string
	noUserConfig bool
	output       string
}

// runOptions turns args and the flags that were set into runner options.
// Flags left at their default do not override the configuration files.
func (g *globalFlags) runOptions(cmd *cobra.Command, args []string, check bool) runner.Options {
	overrides := make(map[string]interface{})
	flags := cmd.Flags()
	if flags.Changed("hidden") {
		overrides[config.KeyHidden] = g.hidden
	}
	if flags.Changed("no-gitignore") {
		overrides[config.KeyRespectGitignore] = !g.noGitignore
	}
	if flags.Changed("jobs") {
		overrides[config.KeyJobs] = g.jobs
	}

	return runner.Options{
		Paths:        args,
		Check:        check,
		ConfigFile:   g.configFile,
		NoUserConfig: g.noUserConfig,
		Overrides:    overrides,
	}
}

func (g *globalFlags) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(g.output)
	if err != nil {
		return nil, fmt.Errorf(MsgErrOutputFormat, err)
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	g := &globalFlags{}
	var check bool

	rootCmd := &cobra.Command{
		Use:     "basefmt [paths...]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), g.runOptions(cmd, args, check))
			if err != nil {
				return err
			}
			return report(renderer, result)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.BoolVar(&g.hidden, "hidden", false, MsgFlagHidden)
	pf.BoolVar(&g.noGitignore, "no-gitignore", false, MsgFlagNoGitignore)
	pf.IntVarP(&g.jobs, "jobs", "j", 0, MsgFlagJobs)
	pf.StringVar(&g.configFile, "config", "", MsgFlagConfig)
	pf.BoolVar(&g.noUserConfig, "no-user-config", false, MsgFlagNoUserConfig)
	pf.StringVarP(&g.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.Flags().BoolVarP(&check, "check", "c", false, MsgFlagCheck)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newRulesCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newInitCmd(g))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Initialize topic-based help system from the embedded topics
	opts := topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}
	if _, err := topics.InitializeWithOptions(rootCmd, helpTopics(), opts); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// report renders a run result and converts its exit code into an error
func report(renderer ui.Renderer, result *types.RunResult) error {
	if err := renderer.RenderResult(result); err != nil {
		return err
	}
	if code := result.ExitCode(); code != types.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func newRulesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rules <files...>",
		Short:   MsgRulesShort,
		Long:    MsgRulesLong,
		Example: MsgRulesExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}

			results, warnings, err := runner.Rules(g.runOptions(cmd, args, false))
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), MsgWarningFormat, w)
			}
			return renderer.RenderResult(results)
		},
	}
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var (
		check    bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:     "watch [paths...]",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, opts, err := watchSession(g.runOptions(cmd, args, check))
			if err != nil {
				return err
			}
			result, err := session.Run(ctx, opts.Paths)
			if err != nil {
				return err
			}
			if err := renderer.RenderResult(result); err != nil {
				return err
			}

			targets, err := watchTargets(args)
			if err != nil {
				return err
			}

			w, err := watch.New(watch.Options{
				Roots:    targets.roots(),
				Hidden:   session.Config().Hidden,
				Debounce: debounce,
				OnChange: func(batch watch.Batch) {
					rerun(ctx, renderer, opts, targets, batch)
				},
			})
			if err != nil {
				return fmt.Errorf(MsgErrWatch, err)
			}
			defer func() { _ = w.Close() }()

			fmt.Fprintln(cmd.ErrOrStderr(), MsgWatching)
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVarP(&check, "check", "c", false, MsgFlagCheck)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	return cmd
}

// watchSession builds the session of the initial run and returns the
// options reruns use, pinned to that session's project directory.
func watchSession(opts runner.Options) (*runner.Session, runner.Options, error) {
	session, err := runner.NewSession(opts)
	if err != nil {
		return nil, opts, err
	}
	opts.ProjectDir = session.ProjectDir()
	return session, opts, nil
}

// rerun processes one batch of changes. A config change reprocesses every
// path the watch started with. opts.ProjectDir must be the project of the
// initial run, otherwise the changed files would pick their own.
func rerun(ctx context.Context, renderer ui.Renderer, opts runner.Options, targets watchTargetList, batch watch.Batch) {
	logger := logging.GetLogger("cmd.watch")

	if batch.ConfigChanged {
		logger.Info().Msg(MsgConfigReloaded)
	} else {
		var files []string
		for _, f := range batch.Files {
			if targets.accepts(f) {
				files = append(files, f)
			}
		}
		if len(files) == 0 {
			return
		}
		opts.Paths = files
	}

	result, err := runner.Run(ctx, opts)
	if err != nil {
		if ctx.Err() == nil {
			_ = renderer.RenderError(err)
		}
		return
	}
	if err := renderer.RenderResult(result); err != nil {
		logger.Warn().Err(err).Msg("Cannot render result")
	}
}

type watchTarget struct {
	path  string
	isDir bool
}

type watchTargetList []watchTarget

// watchTargets resolves the watched paths. A file is watched through its
// directory.
func watchTargets(args []string) (watchTargetList, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var targets watchTargetList
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf(MsgErrWatch, err)
		}
		targets = append(targets, watchTarget{path: abs, isDir: info.IsDir()})
	}
	return targets, nil
}

func (l watchTargetList) roots() []string {
	seen := make(map[string]bool)
	var roots []string
	for _, t := range l {
		dir := t.path
		if !t.isDir {
			dir = filepath.Dir(dir)
		}
		if !seen[dir] {
			seen[dir] = true
			roots = append(roots, dir)
		}
	}
	return roots
}

// accepts reports whether a changed file belongs to the watched paths
func (l watchTargetList) accepts(path string) bool {
	for _, t := range l {
		if !t.isDir {
			if path == t.path {
				return true
			}
			continue
		}
		if path == t.path || strings.HasPrefix(path, t.path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func newInitCmd(g *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "init [dir]",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd)
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			result, err := config.WriteProjectConfig(filesystem.NewOS(), abs, force)
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			fmt.Fprintf(out, MsgBuiltFormat, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			if err := doc.GenManTree(cmd.Root(), ManHeader(), dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManDir)
	return cmd
}

// ManHeader is the header of the generated man pages
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "BASEFMT",
		Section: "1",
		Source:  "basefmt " + version.Version,
		Manual:  "basefmt manual",
	}
}
