package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/rimdefs/internal/config"
	"github.com/harrison/rimdefs/internal/fileutil"
	"github.com/harrison/rimdefs/internal/version"
)

// addSettingsFlags registers the flags shared by every command that
// resolves the effective configuration.
func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .rimdefs/config.yaml)")
	cmd.Flags().StringArray("official", nil, "Official game data root (repeatable, e.g. .../RimWorld/Data)")
	cmd.Flags().StringArray("workshop", nil, "Workshop content root (repeatable, e.g. .../workshop/content/294100)")
	cmd.Flags().StringArray("dev", nil, "Local development mods root (repeatable)")
	cmd.Flags().String("out", "", "Output directory for JSON files")
	cmd.Flags().String("version", "", "Explicit RimWorld version for rim_meta.json (overrides detection)")
	cmd.Flags().Bool("no-auto-version", false, "Disable Version.txt detection under the official roots")
	cmd.Flags().Bool("include-languages", false, "Also scan Languages directories")
	cmd.Flags().StringSlice("exclude", nil, "Extra directory names to prune while scanning (case-insensitive)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the build history")
}

// settings is the effective configuration of one command invocation.
type settings struct {
	cfg      *config.Config
	explicit string // --version, if given
	detected string // Version.txt result, empty when none or disabled
	version  string // Resolved version
}

// loadConfig loads .env files and then the config file named by --config,
// or the default one in the rimdefs home directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// resolveSettings loads the config, resolves its paths, applies the
// flags that were set and resolves the version. Flag paths are relative
// to the working directory.
func resolveSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths()

	var overrides config.FlagOverrides
	flags := cmd.Flags()

	for name, target := range map[string]**[]string{
		"official": &overrides.Official,
		"workshop": &overrides.Workshop,
		"dev":      &overrides.Dev,
	} {
		if !flags.Changed(name) {
			continue
		}
		values, _ := flags.GetStringArray(name)
		abs, err := absPaths(values)
		if err != nil {
			return nil, err
		}
		*target = &abs
	}
	if flags.Changed("out") {
		out, _ := flags.GetString("out")
		abs, err := filepath.Abs(out)
		if err != nil {
			return nil, fmt.Errorf("resolve --out: %w", err)
		}
		overrides.Out = &abs
	}
	if flags.Changed("no-auto-version") {
		off, _ := flags.GetBool("no-auto-version")
		auto := !off
		overrides.AutoVersion = &auto
	}
	if flags.Changed("include-languages") {
		v, _ := flags.GetBool("include-languages")
		overrides.IncludeLanguages = &v
	}
	if flags.Changed("exclude") {
		v, _ := flags.GetStringSlice("exclude")
		overrides.Exclude = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		v = strings.ToLower(v)
		overrides.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		abs, err := filepath.Abs(v)
		if err != nil {
			return nil, fmt.Errorf("resolve --log-dir: %w", err)
		}
		overrides.LogDir = &abs
	}
	if flags.Changed("no-history") {
		off, _ := flags.GetBool("no-history")
		enabled := !off
		overrides.HistoryEnabled = &enabled
	}

	cfg.MergeWithFlags(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &settings{cfg: cfg}
	if flags.Changed("version") {
		s.explicit, _ = flags.GetString("version")
	}
	if cfg.AutoVersion {
		s.detected, _ = version.Detect(cfg.Official)
	}
	s.version = version.Resolve(s.explicit, s.detected, cfg.Version)
	return s, nil
}

// prune returns the directory names pruned during mod scans.
func (s *settings) prune() []string {
	return fileutil.PruneSet(s.cfg.IncludeLanguages, s.cfg.Exclude)
}

func absPaths(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		abs, err := filepath.Abs(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", v, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
