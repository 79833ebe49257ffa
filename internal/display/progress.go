package display

import (
	"fmt"
	"io"
)

// ProgressIndicator manages multi-step progress display with ANSI colors
type ProgressIndicator struct {
	writer  io.Writer
	title   string
	total   int
	current int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, title string, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		title:  title,
		total:  total,
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "%s:\n", p.title)
}

// Step displays progress for current item: [N/Total] item (cyan)
func (p *ProgressIndicator) Step(item string) {
	p.current++
	fmt.Fprintf(p.writer, "\x1b[36m  [%d/%d] %s\x1b[0m\n", p.current, p.total, item)
}

// Detail prints an indented line under the current step.
func (p *ProgressIndicator) Detail(line string) {
	fmt.Fprintf(p.writer, "        %s\n", line)
}

// Complete displays success message with green checkmark
func (p *ProgressIndicator) Complete(noun string, count int) {
	fmt.Fprintf(p.writer, "\x1b[32m✓\x1b[0m Found %d %s\n", count, noun)
}
