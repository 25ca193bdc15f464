package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/basefmt/pkg/errors"
	"github.com/arthur-debert/basefmt/pkg/logging"
	"github.com/arthur-debert/basefmt/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "BASEFMT_"

// Keys known to the configuration
const (
	KeyExclude          = "exclude"
	KeyRespectGitignore = "respect_gitignore"
	KeyHidden           = "hidden"
	KeyJobs             = "jobs"
)

var knownKeys = map[string]bool{
	KeyExclude:          true,
	KeyRespectGitignore: true,
	KeyHidden:           true,
	KeyJobs:             true,
}

// Config is the effective configuration of a run
type Config struct {
	Exclude          []string `koanf:"exclude"`
	RespectGitignore bool     `koanf:"respect_gitignore"`
	Hidden           bool     `koanf:"hidden"`
	Jobs             int      `koanf:"jobs"`

	// BaseDir is the directory exclude patterns are relative to
	BaseDir string `koanf:"-"`

	// Sources lists the config files that were merged, in load order
	Sources []string `koanf:"-"`

	// Warnings holds problems with config sources that were skipped
	Warnings []string `koanf:"-"`
}

// Options controls where configuration is read from
type Options struct {
	// ProjectDir holds .basefmt.toml and anchors exclude patterns
	ProjectDir string

	// ConfigFile replaces the project config file when set. It must exist.
	ConfigFile string

	// NoUserConfig skips the file under the XDG config directory
	NoUserConfig bool

	// Overrides are applied last, typically from command-line flags
	Overrides map[string]interface{}
}

// Load builds the configuration from, in increasing priority: embedded
// defaults, the user config, the project config, BASEFMT_* environment
// variables and opts.Overrides. A config file that cannot be parsed is
// skipped with a warning.
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	defer logging.LogDuration(time.Now(), "config.load")

	baseDir := opts.ProjectDir
	if baseDir == "" {
		baseDir = "."
	}
	projectPath := paths.ProjectConfigPath(baseDir)
	if opts.ConfigFile != "" {
		projectPath = paths.ExpandHome(opts.ConfigFile)
		if _, err := os.Stat(projectPath); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", projectPath).
				WithDetail("path", projectPath)
		}
		baseDir = filepath.Dir(projectPath)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", baseDir)
	}

	cfg := &Config{BaseDir: absBase}

	// 1. Defaults
	merged := getSystemDefaults()

	// 2. User and project files
	files := []string{projectPath}
	if !opts.NoUserConfig {
		files = []string{paths.UserConfigPath(), projectPath}
	}
	for _, path := range files {
		layer, notes, err := loadFile(path)
		cfg.Warnings = append(cfg.Warnings, notes...)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping config file")
			cfg.Warnings = append(cfg.Warnings, err.Error())
			continue
		}
		if layer == nil {
			continue
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
		mergeMaps(merged, layer)
		cfg.Sources = append(cfg.Sources, path)
	}

	// 3. Environment
	envK := koanf.New(".")
	err = envK.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if !knownKeys[key] {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}
	mergeMaps(merged, envK.All())

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(merged, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load merged config")
	}

	// 4. Overrides replace instead of appending
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	// 5. Unmarshal
	if err := unmarshal(k, cfg); err != nil {
		return nil, err
	}

	postProcessConfig(cfg)
	return cfg, nil
}

// Defaults returns the built-in configuration, ignoring every file and the
// environment
func Defaults() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(getSystemDefaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	cfg := &Config{}
	if err := unmarshal(k, cfg); err != nil {
		return nil, err
	}
	postProcessConfig(cfg)
	return cfg, nil
}

func unmarshal(k *koanf.Koanf, cfg *Config) error {
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return nil
}

// loadFile reads one TOML layer. A missing file yields a nil map and no
// error; unknown keys are returned as notes.
func loadFile(path string) (map[string]interface{}, []string, error) {
	data, err := file.Provider(path).ReadBytes()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path).
			WithDetail("path", path)
	}

	notes, err := checkStrict(path, data)
	if err != nil {
		return nil, notes, err
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return nil, notes, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
			WithDetail("path", path)
	}

	layer := make(map[string]interface{})
	for key, value := range k.All() {
		if knownKeys[key] {
			layer[key] = value
		}
	}
	return layer, notes, nil
}

func getSystemDefaults() map[string]interface{} {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return map[string]interface{}{}
	}
	return k.All()
}

func postProcessConfig(cfg *Config) {
	if cfg.Jobs < 0 {
		cfg.Warnings = append(cfg.Warnings, "jobs must not be negative, using one worker per CPU")
		cfg.Jobs = 0
	}

	exclude := cfg.Exclude[:0]
	for _, pattern := range cfg.Exclude {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			exclude = append(exclude, pattern)
		}
	}
	cfg.Exclude = exclude
}

// mergeMaps merges src into dest. Nested maps are merged, slices are
// appended and everything else is overwritten.
func mergeMaps(dest, src map[string]interface{}) {
	for key, srcVal := range src {
		destVal, destOk := dest[key]
		if !destOk {
			dest[key] = srcVal
			continue
		}

		if srcMap, srcOk := srcVal.(map[string]interface{}); srcOk {
			if destMap, destOk := destVal.(map[string]interface{}); destOk {
				mergeMaps(destMap, srcMap)
				continue
			}
		}

		if isSlice(srcVal) && isSlice(destVal) {
			dest[key] = appendSlices(destVal, srcVal)
			continue
		}

		dest[key] = srcVal
	}
}

func isSlice(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []string:
		return true
	default:
		return false
	}
}

func appendSlices(dest, src interface{}) interface{} {
	destSlice := toInterfaceSlice(dest)
	srcSlice := toInterfaceSlice(src)
	return append(destSlice, srcSlice...)
}

func toInterfaceSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return append([]interface{}(nil), s...)
	case []string:
		result := make([]interface{}, len(s))
		for i, v := range s {
			result[i] = v
		}
		return result
	default:
		return []interface{}{}
	}
}
