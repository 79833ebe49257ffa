// Package report renders a build result as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/rimdefs/internal/filelock"
	"github.com/harrison/rimdefs/internal/models"
)

// File names written next to the build outputs.
const (
	MarkdownFileName = "build_report.md"
	HTMLFileName     = "build_report.html"
)

const title = "rimdefs build report"

// Markdown returns the Markdown summary of result.
func Markdown(result *models.BuildResult) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- **Version:** %s\n", inline(result.Version))
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Started:** %s\n", result.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "- **Duration:** %s\n", result.Duration().Round(time.Millisecond))
	fmt.Fprintf(&sb, "- **Def types:** %d\n", result.DefTypes)
	if result.MetaPath != "" {
		fmt.Fprintf(&sb, "- **Schema:** `%s`\n", filepath.ToSlash(result.MetaPath))
	}

	sb.WriteString("\n## Layers\n\n")
	sb.WriteString("| Layer | Mod roots | Documents | Items | Skipped | Output |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---|\n")
	var mods, docs int
	for _, l := range result.Layers {
		mods += len(l.ModRoots)
		docs += l.Documents
		output := ""
		if l.OutputPath != "" {
			output = "`" + filepath.Base(l.OutputPath) + "`"
		}
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %d | %s |\n",
			cell(l.Layer), len(l.ModRoots), l.Documents, l.Items, len(l.Skipped), output)
	}
	fmt.Fprintf(&sb, "| **Total** | %d | %d | %d | %d | |\n", mods, docs, result.TotalItems(), result.TotalSkipped())

	sb.WriteString("\n## Skipped documents\n\n")
	if result.TotalSkipped() == 0 {
		sb.WriteString("None.\n")
		return []byte(sb.String())
	}
	sb.WriteString("| Layer | Path | Reason |\n")
	sb.WriteString("|---|---|---|\n")
	for _, l := range result.Layers {
		for _, doc := range l.Skipped {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", cell(l.Layer), cell(filepath.ToSlash(doc.Path)), cell(doc.Message))
		}
	}
	return []byte(sb.String())
}

// HTML renders Markdown produced by Markdown into a standalone page.
func HTML(markdown []byte) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// Write writes build_report.md and build_report.html into dir and returns
// their paths.
func Write(dir string, result *models.BuildResult) (string, string, error) {
	markdown := Markdown(result)
	page, err := HTML(markdown)
	if err != nil {
		return "", "", err
	}

	mdPath := filepath.Join(dir, MarkdownFileName)
	if err := filelock.AtomicWrite(mdPath, markdown); err != nil {
		return "", "", fmt.Errorf("write %s: %w", mdPath, err)
	}
	htmlPath := filepath.Join(dir, HTMLFileName)
	if err := filelock.AtomicWrite(htmlPath, page); err != nil {
		return "", "", fmt.Errorf("write %s: %w", htmlPath, err)
	}
	return mdPath, htmlPath, nil
}

// cell makes s safe inside a table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return inline(strings.ReplaceAll(s, "|", `\|`))
}

// inline escapes characters Markdown would treat as inline markup.
func inline(s string) string {
	r := strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", "[", `\[`)
	return r.Replace(s)
}
