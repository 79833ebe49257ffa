package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/rimdefs/internal/builder"
	"github.com/harrison/rimdefs/internal/display"
	"github.com/harrison/rimdefs/internal/filelock"
	"github.com/harrison/rimdefs/internal/history"
	"github.com/harrison/rimdefs/internal/logger"
	"github.com/harrison/rimdefs/internal/report"
	"github.com/harrison/rimdefs/internal/schema"
)

// NewBuildCommand creates the 'rimdefs build' command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build item and schema JSON files",
		Long: `Build scans every layer's roots for mods, extracts their definition
elements and writes:

  items.<layer>.json   one compact JSON array per layer
  rim_meta.json        the schema observed across all layers

Layers are built in order: official, workshop, dev, then any extra
layers from the config. Documents that fail to parse are skipped and
reported; the build continues.

Examples:
  rimdefs build --official "C:/Program Files (x86)/Steam/steamapps/common/RimWorld/Data"
  rimdefs build --dev ./mods --layers dev --out ./data
  rimdefs build --version 1.5 --no-auto-version
  rimdefs build --report --save-config`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}

	addSettingsFlags(cmd)
	cmd.Flags().StringSlice("layers", nil, "Only build these layers (default: all)")
	cmd.Flags().Bool("quiet", false, "Only print warnings and errors")
	cmd.Flags().Bool("report", false, "Write build_report.md and build_report.html to the output directory")
	cmd.Flags().Bool("save-config", false, "Persist the effective settings to the config file")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cfg := s.cfg

	selected, _ := cmd.Flags().GetStringSlice("layers")
	roots, err := builder.SelectLayers(builder.OrderLayers(cfg.ScanRoots()), selected)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if save, _ := cmd.Flags().GetBool("save-config"); save {
		cfg.Version = s.version
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(out, "Saved configuration to %s\n", cfg.Path())
	}

	lock, err := filelock.AcquireRunLock(cfg.Out)
	if err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return fmt.Errorf("another build is writing to %s: %w", cfg.Out, err)
		}
		return fmt.Errorf("failed to lock output directory: %w", err)
	}
	defer lock.Unlock()

	consoleLevel := cfg.LogLevel
	if quiet {
		consoleLevel = "warn"
	}
	loggers := logger.MultiLogger{logger.NewConsoleLogger(out, consoleLevel)}

	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		fileLog, err = logger.NewFileLoggerWithLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		loggers = append(loggers, fileLog)
	}

	if !quiet {
		if w, ok := display.WarnMissingRoots(roots); ok {
			w.Display(errOut)
		}
	}
	loggers.LogInfo(fmt.Sprintf("Version: %s (detected: %s)", s.version, orNone(s.detected)))

	var store *history.Store
	var run *history.Run
	if cfg.History.Enabled {
		store, run = startHistory(cfg.History.DBPath, s.version, cfg.Out, loggers)
		if store != nil {
			defer store.Close()
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *progressDisplay
	if !quiet {
		bar = newProgressDisplay(errOut, len(roots)+1)
	}

	b, err := builder.New(builder.Options{
		OutDir:   cfg.Out,
		Prune:    s.prune(),
		Matcher:  cfg.Matcher(),
		Logger:   loggers,
		Progress: bar.update,
	}, schema.NewRegistry())
	if err != nil {
		return err
	}

	result, buildErr := b.Run(ctx, roots, s.version)
	bar.finish()

	if store != nil && run != nil {
		if err := store.FinishRun(context.Background(), run.ID, result, buildErr); err != nil {
			loggers.LogWarn(fmt.Sprintf("failed to record build history: %v", err))
		}
	}

	if buildErr != nil {
		if errors.Is(buildErr, context.Canceled) {
			return fmt.Errorf("build interrupted: %w", buildErr)
		}
		return fmt.Errorf("build failed: %w", buildErr)
	}

	loggers.LogSummary(*result)
	if w, ok := display.WarnSkippedDocuments(result); ok {
		w.Display(errOut)
	}

	if withReport, _ := cmd.Flags().GetBool("report"); withReport {
		mdPath, htmlPath, err := report.Write(cfg.Out, result)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		loggers.LogInfo(fmt.Sprintf("Report written to %s and %s", mdPath, htmlPath))
	}

	if !quiet {
		fmt.Fprintf(out, "\nBuild completed: %d items in %d layers -> %s\n", result.TotalItems(), len(result.Layers), cfg.Out)
		if fileLog != nil {
			fmt.Fprintf(out, "Logs written to: %s\n", cfg.LogDir)
		}
		if run != nil {
			fmt.Fprintf(out, "Run id: %s\n", run.ID)
		}
	}
	return nil
}

// startHistory opens the history store and records the start of a run.
// History is best effort: failures are logged and the build goes on.
func startHistory(dbPath, ver, outDir string, log logger.Logger) (*history.Store, *history.Run) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("build history disabled: %v", err))
		return nil, nil
	}
	run, err := store.StartRun(context.Background(), ver, outDir, time.Now())
	if err != nil {
		log.LogWarn(fmt.Sprintf("build history disabled: %v", err))
		store.Close()
		return nil, nil
	}
	return store, run
}

// progressDisplay draws the build progress bar on a terminal. A nil
// progressDisplay, or one writing to a non-terminal, draws nothing.
type progressDisplay struct {
	w   io.Writer
	bar *logger.ProgressBar
}

func newProgressDisplay(w io.Writer, steps int) *progressDisplay {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return &progressDisplay{w: w, bar: logger.NewProgressBar(steps, 30, true)}
}

func (p *progressDisplay) update(stage string, fraction float64) {
	if p == nil {
		return
	}
	p.bar.SetPrefix(fmt.Sprintf("%-10s ", stage))
	p.bar.SetFraction(fraction)
	fmt.Fprintf(p.w, "\r%s", p.bar.Render())
}

func (p *progressDisplay) finish() {
	if p == nil {
		return
	}
	fmt.Fprintln(p.w)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
