package logger

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/rimdefs/internal/models"
)

var tsPrefix = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestNewConsoleLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "DEBUG")

	if logger.writer != buf {
		t.Error("writer not set correctly")
	}
	if logger.logLevel != "debug" {
		t.Errorf("expected log level debug, got %q", logger.logLevel)
	}
	if logger.colorOutput {
		t.Error("color should be off for a buffer")
	}

	if NewConsoleLogger(nil, "bogus").logLevel != "info" {
		t.Error("invalid level should default to info")
	}
}

func TestConsoleLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{level: "trace", want: []string{"[TRACE] t", "[DEBUG] d", "[INFO] i", "[WARN] w", "[ERROR] e"}},
		{level: "info", want: []string{"[INFO] i", "[WARN] w", "[ERROR] e"}, skip: []string{"TRACE", "DEBUG"}},
		{level: "error", want: []string{"[ERROR] e"}, skip: []string{"TRACE", "DEBUG", "INFO", "WARN"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := NewConsoleLogger(buf, tt.level)
			l.LogTrace("t")
			l.LogDebug("d")
			l.LogInfo("i")
			l.LogWarn("w")
			l.LogError("e")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				if !tsPrefix.MatchString(line) {
					t.Errorf("line without timestamp: %q", line)
				}
			}
		})
	}
}

func TestConsoleLoggerBuildEvents(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "debug")

	l.LogLayerStart("official", []string{"/games/RimWorld/Data"})
	l.LogModScanned("official", "Core", 120, 340)
	l.LogDocumentSkipped("official", models.SkippedDocument{Path: "/m/Defs/bad.xml", Message: "parse error: EOF"})
	l.LogLayerComplete(models.LayerResult{
		Layer:      "official",
		ModRoots:   []string{"/games/RimWorld/Data/Core"},
		Documents:  120,
		Items:      340,
		Skipped:    []models.SkippedDocument{{Path: "/m/Defs/bad.xml"}},
		OutputPath: "/out/items.official.json",
		Duration:   1500 * time.Millisecond,
	})

	out := buf.String()
	for _, want := range []string{
		"=== Building layer: official ===",
		"Roots: /games/RimWorld/Data",
		"[official] Core: 120 documents, 340 defs",
		"[WARN] [official] skipped /m/Defs/bad.xml: parse error: EOF",
		"official complete: 340 items from 1 mods, 120 documents, 1 skipped -> /out/items.official.json (1.5s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleLoggerEmptyLayer(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogLayerStart("dev", nil)
	if !strings.Contains(buf.String(), "no roots provided") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsoleLoggerModScannedIsDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogModScanned("dev", "Mine", 1, 1)
	if buf.Len() != 0 {
		t.Errorf("mod line should be suppressed at info: %q", buf.String())
	}
}

func TestConsoleLoggerSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	NewConsoleLogger(buf, "info").LogSummary(models.BuildResult{
		Version: "1.5.4062",
		Layers: []models.LayerResult{
			{Layer: "official", Items: 10},
			{Layer: "dev", Items: 2, Skipped: []models.SkippedDocument{{Path: "x"}}},
		},
		DefTypes:   4,
		MetaPath:   "/out/rim_meta.json",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
	})

	out := buf.String()
	for _, want := range []string{
		"=== Build Summary ===",
		"Version: 1.5.4062",
		"Layers: 2",
		"Items: 12",
		"Skipped documents: 1",
		"Def types: 4",
		"Meta: /out/rim_meta.json",
		"Duration: 1m30s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleLoggerNilWriter(t *testing.T) {
	l := NewConsoleLogger(nil, "trace")
	l.LogInfo("x")
	l.LogLayerStart("a", nil)
	l.LogLayerComplete(models.LayerResult{})
	l.LogSummary(models.BuildResult{})
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.LogInfo("message")
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), "[INFO] message\n"); n != 20 {
		t.Errorf("got %d complete lines, want 20", n)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		400 * time.Millisecond:                   "0.4s",
		12 * time.Second:                         "12s",
		time.Minute:                              "1m",
		90 * time.Second:                         "1m30s",
		2 * time.Hour:                            "2h",
		2*time.Hour + 15*time.Minute:             "2h15m",
		2*time.Hour + 15*time.Minute + time.Second: "2h15m1s",
	}
	for d, want := range tests {
		if got := formatDuration(d); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, l := range []string{"trace", "DEBUG", " info ", "warn", "error"} {
		if !IsValidLevel(l) {
			t.Errorf("IsValidLevel(%q) = false", l)
		}
	}
	for _, l := range []string{"", "verbose", "fatal"} {
		if IsValidLevel(l) {
			t.Errorf("IsValidLevel(%q) = true", l)
		}
	}
}
