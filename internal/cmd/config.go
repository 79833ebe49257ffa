package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/rimdefs/internal/config"
)

// NewConfigCommand creates the 'rimdefs config' parent command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the rimdefs configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration a build would use after applying the config
file and any flags given here, including the detected game version.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
	addSettingsFlags(cmd)
	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg
	out := cmd.OutOrStdout()

	source := cfg.Path()
	if _, err := os.Stat(source); err != nil {
		source += " (not found, using defaults)"
	}

	fmt.Fprintf(out, "Effective configuration:\n")
	fmt.Fprintf(out, "  config  : %s\n", source)
	fmt.Fprintf(out, "  official: %s\n", pathList(cfg.Official))
	fmt.Fprintf(out, "  workshop: %s\n", pathList(cfg.Workshop))
	fmt.Fprintf(out, "  dev     : %s\n", pathList(cfg.Dev))
	for _, l := range cfg.Layers {
		fmt.Fprintf(out, "  %-8s: %s\n", l.Name, pathList(l.Roots))
	}
	fmt.Fprintf(out, "  out     : %s\n", filepath.ToSlash(cfg.Out))
	fmt.Fprintf(out, "  version : %s\n", s.version)
	fmt.Fprintf(out, "  detectedVersion: %s\n", orNone(s.detected))
	fmt.Fprintf(out, "  scan    : include_languages=%t, extra_excludes=[%s]\n", cfg.IncludeLanguages, strings.Join(cfg.Exclude, ", "))
	fmt.Fprintf(out, "  prune   : %s\n", strings.Join(s.prune(), ", "))
	fmt.Fprintf(out, "  suffixes: %s\n", strings.Join(cfg.Matcher().Suffixes, ", "))
	fmt.Fprintf(out, "  log     : level=%s dir=%s\n", cfg.LogLevel, filepath.ToSlash(cfg.LogDir))
	if cfg.History.Enabled {
		fmt.Fprintf(out, "  history : %s\n", filepath.ToSlash(cfg.History.DBPath))
	} else {
		fmt.Fprintf(out, "  history : disabled\n")
	}
	return nil
}

func newConfigInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cmd.Flags().String("config", "", "Path to config file (default: .rimdefs/config.yaml)")
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return fmt.Errorf("failed to locate config: %w", err)
		}
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}

func pathList(paths []string) string {
	if len(paths) == 0 {
		return "[]"
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.ToSlash(p)
	}
	return "[" + strings.Join(out, ", ") + "]"
}
