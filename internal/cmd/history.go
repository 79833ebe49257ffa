package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/rimdefs/internal/history"
	"github.com/harrison/rimdefs/internal/models"
)

// NewHistoryCommand creates the 'rimdefs history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds",
		Long: `List recent builds recorded in the history database, newest first.
Use 'rimdefs history show <id>' for the layers and skipped documents of
one run. A unique prefix of the run id is enough.`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}
	cmd.PersistentFlags().String("config", "", "Path to config file (default: .rimdefs/config.yaml)")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded build",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	})
	return cmd
}

// openHistory opens the configured history database. It returns nil
// without error when no database has been written yet.
func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths()

	if cfg.History.DBPath == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.History.DBPath); os.IsNotExist(err) {
		return nil, nil
	}
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(out, "No build history found.")
		return nil
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No build history found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tVERSION\tITEMS\tSKIPPED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"), statusText(r.Status),
			r.Version, r.Items, r.Skipped, durationText(r))
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%s: %w", args[0], history.ErrRunNotFound)
	}
	defer store.Close()

	detail, err := store.GetRun(context.Background(), args[0])
	if err != nil {
		return err
	}
	printRunDetail(out, detail)
	return nil
}

func printRunDetail(out io.Writer, d *history.RunDetail) {
	r := d.Run
	fmt.Fprintf(out, "Run %s\n", r.ID)
	fmt.Fprintf(out, "  Status:    %s\n", statusText(r.Status))
	fmt.Fprintf(out, "  Started:   %s\n", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "  Duration:  %s\n", durationText(r))
	fmt.Fprintf(out, "  Version:   %s\n", r.Version)
	fmt.Fprintf(out, "  Output:    %s\n", r.OutDir)
	fmt.Fprintf(out, "  Items:     %d\n", r.Items)
	fmt.Fprintf(out, "  Def types: %d\n", r.DefTypes)
	if r.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:     %s\n", r.ErrorMessage)
	}

	if len(d.Layers) > 0 {
		fmt.Fprintln(out, "\nLayers:")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  LAYER\tMODS\tDOCUMENTS\tITEMS\tSKIPPED\tTIME")
		for _, l := range d.Layers {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d\t%.1fs\n", l.Layer, l.ModRoots, l.Documents, l.Items, l.Skipped, l.Duration.Seconds())
		}
		tw.Flush()
	}

	if len(d.Skipped) > 0 {
		fmt.Fprintf(out, "\nSkipped documents (%d):\n", len(d.Skipped))
		for _, s := range d.Skipped {
			fmt.Fprintf(out, "  [%s] %s: %s\n", s.Layer, s.Path, s.Message)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusText(status string) string {
	switch status {
	case models.StatusSucceeded:
		return color.GreenString(status)
	case models.StatusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

func durationText(r *history.Run) string {
	if r.FinishedAt.IsZero() {
		return "-"
	}
	return r.Duration().Round(100 * time.Millisecond).String()
}
