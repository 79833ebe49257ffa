// Package logger provides logging implementations for rimdefs builds.
//
// Loggers report build progress per layer and per mod, the documents that
// were skipped and the final summary. Implementations are thread-safe and
// write to the console, to per-run log files, or both.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/rimdefs/internal/models"
)

// ConsoleLogger logs build progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// Honours NO_COLOR and non-TTY output.
		return !color.NoColor
	}
	return false
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return allows(cl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
// Format: "[HH:MM:SS] [WARN] <message>"
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
// Format: "[HH:MM:SS] [ERROR] <message>"
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		cl.write(cl.formatWithColor(ts, level, message))
		return
	}
	cl.write(fmt.Sprintf("[%s] [%s] %s\n", ts, level, message))
}

func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}

// LogLayerStart logs the start of a layer build at INFO level.
// Format: "[HH:MM:SS] === Building layer: <name> ===" followed by its roots.
func (cl *ConsoleLogger) LogLayerStart(layer string, roots []string) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	name := layer
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(layer)
	}
	out := fmt.Sprintf("[%s] === Building layer: %s ===\n", ts, name)
	if len(roots) == 0 {
		out += fmt.Sprintf("[%s]     no roots provided\n", ts)
	} else {
		out += fmt.Sprintf("[%s]     Roots: %s\n", ts, strings.Join(roots, ", "))
	}
	cl.write(out)
}

// LogModScanned logs the outcome of one mod root at DEBUG level.
// Format: "[HH:MM:SS] [<layer>] <mod>: <n> documents, <m> defs"
func (cl *ConsoleLogger) LogModScanned(layer, mod string, documents, items int) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	cl.write(fmt.Sprintf("[%s] [%s] %s: %d documents, %d defs\n", timestamp(), layer, mod, documents, items))
}

// LogDocumentSkipped logs a document that could not be read at WARN level.
func (cl *ConsoleLogger) LogDocumentSkipped(layer string, doc models.SkippedDocument) {
	cl.LogWarn(fmt.Sprintf("[%s] skipped %s: %s", layer, doc.Path, doc.Message))
}

// LogLayerComplete logs the completion of a layer at INFO level.
// Format: "[HH:MM:SS] <layer> complete: <n> items from <m> mods -> <path> (<duration>)"
func (cl *ConsoleLogger) LogLayerComplete(result models.LayerResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	durationStr := formatDuration(result.Duration)

	var out string
	if cl.colorOutput {
		scheme := newColorScheme()
		out = fmt.Sprintf("[%s] %s %s: %s -> %s (%s)\n",
			ts,
			color.New(color.Bold).Sprint(result.Layer),
			scheme.success.Sprint("complete"),
			formatLayerCounts(result, scheme),
			result.OutputPath,
			durationStr)
	} else {
		out = fmt.Sprintf("[%s] %s complete: %d items from %d mods, %d documents, %d skipped -> %s (%s)\n",
			ts, result.Layer, result.Items, len(result.ModRoots), result.Documents, len(result.Skipped),
			result.OutputPath, durationStr)
	}
	cl.write(out)
}

// LogSummary logs the build summary at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.BuildResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	skipped := result.TotalSkipped()

	header := "=== Build Summary ==="
	skippedLine := fmt.Sprintf("Skipped documents: %d", skipped)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		if skipped > 0 {
			skippedLine = color.New(color.FgYellow).Sprint(skippedLine)
		}
	}

	out := fmt.Sprintf("[%s] %s\n", ts, header)
	out += fmt.Sprintf("[%s] Version: %s\n", ts, result.Version)
	out += fmt.Sprintf("[%s] Layers: %d\n", ts, len(result.Layers))
	out += fmt.Sprintf("[%s] Items: %d\n", ts, result.TotalItems())
	out += fmt.Sprintf("[%s] %s\n", ts, skippedLine)
	out += fmt.Sprintf("[%s] Def types: %d\n", ts, result.DefTypes)
	if result.MetaPath != "" {
		out += fmt.Sprintf("[%s] Meta: %s\n", ts, result.MetaPath)
	}
	out += fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(result.Duration()))
	cl.write(out)
}

func (cl *ConsoleLogger) write(s string) {
	cl.writer.Write([]byte(s))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "0.4s", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= 10*time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
