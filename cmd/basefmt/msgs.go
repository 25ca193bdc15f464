package basefmt

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Normalize leading blank lines, trailing whitespace and final newlines"
	MsgRulesShort      = "Show the rules that apply to files and where they come from"
	MsgWatchShort      = "Format files again whenever they change"
	MsgInitShort       = "Create a .basefmt.toml with the default settings"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgVersionFormat  = "basefmt version %s\n"
	MsgCommitFormat   = "  commit: %s\n"
	MsgBuiltFormat    = "  built:  %s\n"
	MsgWarningFormat  = "warning: %s\n"
	MsgWatching       = "Watching for changes, press Ctrl-C to stop"
	MsgManWritten     = "Wrote man pages to %s"
	MsgConfigReloaded = "Configuration changed, processing all files"

	// Error messages
	MsgErrOutputFormat = "invalid --output value: %w"
	MsgErrWatch        = "failed to watch: %w"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagCheck        = "Report files that are not formatted instead of changing them"
	MsgFlagHidden       = "Include hidden files and directories"
	MsgFlagNoGitignore  = "Do not skip files ignored by git"
	MsgFlagJobs         = "Number of files processed in parallel (0 = one per CPU)"
	MsgFlagConfig       = "Read settings from this file instead of .basefmt.toml"
	MsgFlagNoUserConfig = "Do not read the user configuration file"
	MsgFlagOutput       = "Output format: auto, term, text, json or checkstyle"
	MsgFlagForce        = "Overwrite an existing .basefmt.toml"
	MsgFlagDebounce     = "Quiet period before changed files are processed"
	MsgFlagManDir       = "Directory to write the man pages to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/rules-long.txt
	msgRulesLongRaw string
	MsgRulesLong    = strings.TrimSpace(msgRulesLongRaw)

	//go:embed msgs/rules-example.txt
	msgRulesExampleRaw string
	MsgRulesExample    = strings.TrimRight(msgRulesExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
