package logger

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harrison/rimdefs/internal/models"
)

// colorScheme defines consistent colors for build counts.
// Green: produced items
// Yellow: skipped documents
// Cyan: labels
type colorScheme struct {
	success *color.Color
	warn    *color.Color
	label   *color.Color
	value   *color.Color
}

func newColorScheme() *colorScheme {
	return &colorScheme{
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
		value:   color.New(color.FgWhite),
	}
}

func formatColorizedMetric(label string, value interface{}, scheme *colorScheme) string {
	return fmt.Sprintf("%s: %s", scheme.label.Sprint(label), scheme.value.Sprintf("%v", value))
}

// formatLayerCounts renders "items: N, mods: N, documents: N, skipped: N".
// Skipped is only shown when non-zero, in yellow.
func formatLayerCounts(result models.LayerResult, scheme *colorScheme) string {
	parts := []string{
		fmt.Sprintf("%s: %s", scheme.success.Sprint("items"), scheme.value.Sprintf("%d", result.Items)),
		formatColorizedMetric("mods", len(result.ModRoots), scheme),
		formatColorizedMetric("documents", result.Documents, scheme),
	}
	if n := len(result.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%s: %s", scheme.warn.Sprint("skipped"), scheme.warn.Sprintf("%d", n)))
	}
	return strings.Join(parts, ", ")
}
