package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/rimdefs/internal/models"
)

// MaxListedFiles caps the files listed in one warning.
const MaxListedFiles = 10

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}

		shown := w.Files
		if len(shown) > MaxListedFiles {
			shown = shown[:MaxListedFiles]
		}
		for i, file := range shown {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
		if rest := len(w.Files) - len(shown); rest > 0 {
			b.WriteString(fmt.Sprintf("      ... and %d more\n", rest))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")

	fmt.Fprint(out, b.String())
}

// WarnSkippedDocuments creates a warning listing the documents a build
// skipped, with the reason for each. ok is false when nothing was skipped.
func WarnSkippedDocuments(result *models.BuildResult) (Warning, bool) {
	var files []string
	for _, layer := range result.Layers {
		for _, doc := range layer.Skipped {
			files = append(files, fmt.Sprintf("[%s] %s: %s", layer.Layer, doc.Path, doc.Message))
		}
	}
	if len(files) == 0 {
		return Warning{}, false
	}

	noun := "documents"
	if len(files) == 1 {
		noun = "document"
	}
	return Warning{
		Title:      fmt.Sprintf("%d %s skipped", len(files), noun),
		Message:    "Definitions in these files are missing from the output.",
		Files:      files,
		Suggestion: "Fix the XML or move the files out of the scanned mods, then rebuild.",
	}, true
}

// WarnMissingRoots creates a warning for configured scan roots that do
// not exist. ok is false when every root exists.
func WarnMissingRoots(roots []models.ScanRoot) (Warning, bool) {
	missing := MissingRoots(roots)
	if len(missing) == 0 {
		return Warning{}, false
	}
	return Warning{
		Title:      "Scan roots not found",
		Message:    "These layers build from the remaining roots only.",
		Files:      missing,
		Suggestion: "Check the paths in your config or flags (rimdefs config show).",
	}, true
}
