package logger

import "github.com/harrison/rimdefs/internal/models"

// Logger is the full set of build events a logger receives.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogLayerStart(layer string, roots []string)
	LogModScanned(layer, mod string, documents, items int)
	LogDocumentSkipped(layer string, doc models.SkippedDocument)
	LogLayerComplete(result models.LayerResult)
	LogSummary(result models.BuildResult)
}

var (
	_ Logger = (*ConsoleLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NoOpLogger)(nil)
	_ Logger = MultiLogger(nil)
)

// MultiLogger forwards every event to each of its loggers in order.
type MultiLogger []Logger

func (m MultiLogger) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m MultiLogger) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m MultiLogger) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m MultiLogger) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m MultiLogger) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

func (m MultiLogger) LogLayerStart(layer string, roots []string) {
	for _, l := range m {
		l.LogLayerStart(layer, roots)
	}
}

func (m MultiLogger) LogModScanned(layer, mod string, documents, items int) {
	for _, l := range m {
		l.LogModScanned(layer, mod, documents, items)
	}
}

func (m MultiLogger) LogDocumentSkipped(layer string, doc models.SkippedDocument) {
	for _, l := range m {
		l.LogDocumentSkipped(layer, doc)
	}
}

func (m MultiLogger) LogLayerComplete(result models.LayerResult) {
	for _, l := range m {
		l.LogLayerComplete(result)
	}
}

func (m MultiLogger) LogSummary(result models.BuildResult) {
	for _, l := range m {
		l.LogSummary(result)
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogLayerStart(string, []string) {}
func (n *NoOpLogger) LogModScanned(string, string, int, int) {}
func (n *NoOpLogger) LogDocumentSkipped(string, models.SkippedDocument) {}
func (n *NoOpLogger) LogLayerComplete(models.LayerResult) {}
func (n *NoOpLogger) LogSummary(models.BuildResult) {}
