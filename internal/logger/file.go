package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/rimdefs/internal/models"
)

// LatestLogName is the symlink that points at the most recent run log.
const LatestLogName = "latest.log"

// FileLogger logs build events to timestamped per-run files in a log
// directory and maintains a latest.log symlink pointing to the most
// recent run. It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir at level "info".
func NewFileLogger(logDir string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, "info")
}

// NewFileLoggerWithLevel creates the log directory if needed, opens a
// run-YYYYMMDD-HHMMSS.log file and repoints latest.log at it.
func NewFileLoggerWithLevel(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, LatestLogName)
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== rimdefs run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// RunFile returns the path of this run's log file.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return allows(fl.logLevel, messageLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogLayerStart records the layer name and its scan roots.
func (fl *FileLogger) LogLayerStart(layer string, roots []string) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	message := fmt.Sprintf("[%s] === Building layer: %s ===\n", ts, layer)
	for _, r := range roots {
		message += fmt.Sprintf("[%s]     root: %s\n", ts, r)
	}
	fl.writeRunLog(message)
}

// LogModScanned records per-mod counts. The run log keeps these at INFO
// so that the file carries the full per-mod breakdown.
func (fl *FileLogger) LogModScanned(layer, mod string, documents, items int) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s: scanned %d documents, emitted %d defs\n",
		timestamp(), layer, mod, documents, items))
}

// LogDocumentSkipped records a skipped document at WARN level.
func (fl *FileLogger) LogDocumentSkipped(layer string, doc models.SkippedDocument) {
	fl.LogWarn(fmt.Sprintf("[%s] skipped %s: %s", layer, doc.Path, doc.Message))
}

// LogLayerComplete records the layer totals and its output file.
func (fl *FileLogger) LogLayerComplete(result models.LayerResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	message := fmt.Sprintf("[%s] %s complete: duration %.1fs\n", ts, result.Layer, result.Duration.Seconds())
	message += fmt.Sprintf("[%s]     mods: %d, documents: %d, items: %d, skipped: %d\n",
		ts, len(result.ModRoots), result.Documents, result.Items, len(result.Skipped))
	message += fmt.Sprintf("[%s]     wrote %s\n", ts, result.OutputPath)
	fl.writeRunLog(message)
}

// LogSummary records the build totals.
func (fl *FileLogger) LogSummary(result models.BuildResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()

	status := "SUCCESS"
	if result.TotalSkipped() > 0 {
		status = "PARTIAL"
	}

	message := fmt.Sprintf(
		"\n[%s] === BUILD SUMMARY ===\n"+
			"[%s] Version:      %s\n"+
			"[%s] Layers:       %d\n"+
			"[%s] Items:        %d\n"+
			"[%s] Skipped:      %d\n"+
			"[%s] Def types:    %d\n"+
			"[%s] Total time:   %.1fs\n"+
			"[%s] Status:       %s\n"+
			"[%s] Completed at: %s\n",
		ts,
		ts, result.Version,
		ts, len(result.Layers),
		ts, result.TotalItems(),
		ts, result.TotalSkipped(),
		ts, result.DefTypes,
		ts, result.Duration().Seconds(),
		ts, status,
		ts, time.Now().Format(time.RFC3339),
	)
	fl.writeRunLog(message)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
