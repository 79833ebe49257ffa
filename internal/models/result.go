package models

import "time"

// Build run status constants
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// SkippedDocument identifies a document that was skipped during a scan.
type SkippedDocument struct {
	Path    string // Absolute path of the document
	Message string // Why it was skipped
}

// LayerResult summarises the processing of one layer
type LayerResult struct {
	Layer      string            // Layer name
	ScanRoots  []string          // Configured scan roots
	ModRoots   []string          // Unique mod roots processed, in order
	Documents  int               // Candidate documents opened
	Items      int               // Item records emitted
	Skipped    []SkippedDocument // Documents skipped with a recoverable error
	OutputPath string            // Path of the items.<layer>.json file
	Duration   time.Duration     // Time taken to build the layer
}

// BuildResult represents the aggregate result of one build run
type BuildResult struct {
	Version    string        // Resolved version written to rim_meta.json
	Layers     []LayerResult // Per-layer results, in processing order
	DefTypes   int           // Number of definition types in the schema
	MetaPath   string        // Path of rim_meta.json
	StartedAt  time.Time
	FinishedAt time.Time
}

// TotalItems returns the number of item records across all layers.
func (r *BuildResult) TotalItems() int {
	total := 0
	for _, l := range r.Layers {
		total += l.Items
	}
	return total
}

// TotalSkipped returns the number of skipped documents across all layers.
func (r *BuildResult) TotalSkipped() int {
	total := 0
	for _, l := range r.Layers {
		total += len(l.Skipped)
	}
	return total
}

// Duration returns the wall-clock time of the run.
func (r *BuildResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
