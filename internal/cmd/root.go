package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for rimdefs
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rimdefs",
		Short: "Convert RimWorld definition XML into browsable JSON",
		Long: `rimdefs scans RimWorld game data and mod folders, extracts every
definition element, and writes one JSON item file per layer
(official, workshop, dev and any configured extra layers) plus a
cumulative schema file, rim_meta.json.

Configuration is loaded from .rimdefs/config.yaml (or $RIMDEFS_HOME).
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewBuildCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewDiscoverCommand())

	return cmd
}
