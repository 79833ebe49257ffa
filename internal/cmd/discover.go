package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/rimdefs/internal/display"
	"github.com/harrison/rimdefs/internal/modroot"
)

// NewDiscoverCommand creates the 'rimdefs discover' command
func NewDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [scan-root]...",
		Short: "Preview the mod roots found under scan roots",
		Long: `Discover lists the mod roots each scan root resolves to, with the
mod display names, without building anything. Without arguments the
configured roots of every layer are used.`,
		RunE: runDiscover,
	}
	cmd.Flags().String("config", "", "Path to config file (default: .rimdefs/config.yaml)")
	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	scanRoots, err := absPaths(args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.ResolvePaths()
		for _, r := range cfg.ScanRoots() {
			scanRoots = append(scanRoots, r.Paths...)
		}
	}
	if len(scanRoots) == 0 {
		return fmt.Errorf("no scan roots given and none configured")
	}

	d, err := modroot.NewDiscoverer(modroot.DefaultOptions())
	if err != nil {
		return err
	}

	progress := display.NewProgressIndicator(cmd.OutOrStdout(), "Discovering mod roots", len(scanRoots))
	progress.Start()

	seen := make(map[string]bool)
	for _, root := range scanRoots {
		progress.Step(filepath.ToSlash(root))
		result, err := d.Discover(cmd.Context(), root)
		if err != nil {
			return err
		}
		for _, werr := range result.Errors {
			progress.Detail(fmt.Sprintf("warning: %v", werr))
		}
		if len(result.Roots) == 0 {
			progress.Detail("(no mod roots)")
		}
		for _, modDir := range result.Roots {
			marker := ""
			if seen[d.RealPath(modDir)] {
				marker = " (duplicate)"
			}
			seen[d.RealPath(modDir)] = true
			progress.Detail(fmt.Sprintf("%s -> %s%s", d.DisplayName(modDir), filepath.ToSlash(modDir), marker))
		}
	}

	progress.Complete("mod roots", len(seen))
	return nil
}
