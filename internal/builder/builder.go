// Package builder turns the scan roots of each layer into item files and
// the run-level schema file.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/rimdefs/internal/defs"
	"github.com/harrison/rimdefs/internal/filelock"
	"github.com/harrison/rimdefs/internal/fileutil"
	"github.com/harrison/rimdefs/internal/models"
	"github.com/harrison/rimdefs/internal/modroot"
	"github.com/harrison/rimdefs/internal/schema"
)

// ErrOutput marks a failure to create the output directory or write an
// output file. It aborts the run.
var ErrOutput = errors.New("output failure")

// Logger receives build events. It is satisfied by the loggers in
// internal/logger.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogLayerStart(layer string, roots []string)
	LogModScanned(layer, mod string, documents, items int)
	LogDocumentSkipped(layer string, doc models.SkippedDocument)
	LogLayerComplete(result models.LayerResult)
}

// ProgressFunc is called after each layer and once more when the schema
// file has been written. fraction is in [0, 1].
type ProgressFunc func(stage string, fraction float64)

// Options configures a Builder.
type Options struct {
	OutDir    string          // Output directory; created when missing
	Prune     []string        // Directory names pruned while scanning a mod
	Matcher   defs.Matcher    // Definition naming predicate; defaults apply when empty
	Discovery modroot.Options // Mod root discovery settings
	Logger    Logger          // Optional
	Progress  ProgressFunc    // Optional
}

// Builder runs the extraction pipeline. It owns the schema registry it
// feeds and is not safe for concurrent use.
type Builder struct {
	opts       Options
	registry   *schema.Registry
	extractor  *defs.Extractor
	discoverer *modroot.Discoverer
	logger     Logger
}

// New creates a Builder that accumulates into registry. A nil registry
// gets a fresh one.
func New(opts Options, registry *schema.Registry) (*Builder, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if registry == nil {
		registry = schema.NewRegistry()
	}
	discoverer, err := modroot.NewDiscoverer(opts.Discovery)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	return &Builder{
		opts:       opts,
		registry:   registry,
		extractor:  defs.NewExtractor(opts.Matcher),
		discoverer: discoverer,
		logger:     logger,
	}, nil
}

// Registry returns the schema registry the builder feeds.
func (b *Builder) Registry() *schema.Registry {
	return b.registry
}

// Run builds each layer in the given order, then writes rim_meta.json for
// version. Progress is reported as min(0.95, step/(layers+1)) after each
// layer and 1.0 after the schema file. The returned result covers the
// layers finished so far even when an error stops the run.
func (b *Builder) Run(ctx context.Context, roots []models.ScanRoot, version string) (*models.BuildResult, error) {
	result := &models.BuildResult{
		Version:   version,
		Layers:    []models.LayerResult{},
		StartedAt: time.Now(),
	}

	if err := os.MkdirAll(b.opts.OutDir, 0755); err != nil {
		return result, fmt.Errorf("%w: create %s: %w", ErrOutput, b.opts.OutDir, err)
	}

	total := float64(len(roots) + 1)
	for i, root := range roots {
		layer, err := b.BuildLayer(ctx, root)
		if err != nil {
			return result, err
		}
		result.Layers = append(result.Layers, *layer)
		b.progress(root.Layer, min(0.95, float64(i+1)/total))
	}

	metaPath := filepath.Join(b.opts.OutDir, models.MetaFileName)
	if err := filelock.WriteJSON(metaPath, b.registry.Meta(version), true); err != nil {
		return result, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	result.MetaPath = metaPath
	result.DefTypes = b.registry.Len()
	b.logger.LogInfo(fmt.Sprintf("wrote %s (defTypes: %d)", metaPath, result.DefTypes))
	b.progress("meta", 1.0)

	result.FinishedAt = time.Now()
	return result, nil
}

func (b *Builder) progress(stage string, fraction float64) {
	if b.opts.Progress != nil {
		b.opts.Progress(stage, fraction)
	}
}

// BuildLayer discovers the mod roots of every scan root of one layer,
// extracts their definitions and writes items.<layer>.json. A layer with
// no scan roots writes an empty list. Per-document failures are recorded
// in the result and do not stop the layer.
func (b *Builder) BuildLayer(ctx context.Context, root models.ScanRoot) (*models.LayerResult, error) {
	start := time.Now()
	result := &models.LayerResult{
		Layer:     root.Layer,
		ScanRoots: append([]string(nil), root.Paths...),
		ModRoots:  []string{},
		Skipped:   []models.SkippedDocument{},
	}
	b.logger.LogLayerStart(root.Layer, root.Paths)

	items := []models.ItemRecord{}
	seen := make(map[string]bool)

	for _, scanRoot := range root.Paths {
		found, err := b.discoverer.Discover(ctx, scanRoot)
		if err != nil {
			return nil, err
		}
		for _, derr := range found.Errors {
			b.logger.LogWarn(fmt.Sprintf("[%s] discovery: %v", root.Layer, derr))
		}
		if len(found.Roots) == 0 {
			b.logger.LogDebug(fmt.Sprintf("[%s] no mod roots under %s", root.Layer, scanRoot))
		}

		for _, modDir := range found.Roots {
			real := b.discoverer.RealPath(modDir)
			if seen[real] {
				continue
			}
			seen[real] = true

			if err := ctx.Err(); err != nil {
				return nil, err
			}
			modItems, err := b.buildMod(ctx, root.Layer, real, result)
			if err != nil {
				return nil, err
			}
			items = append(items, modItems...)
			result.ModRoots = append(result.ModRoots, real)
		}
	}

	result.Items = len(items)
	result.OutputPath = filepath.Join(b.opts.OutDir, models.ItemsFileName(root.Layer))
	if err := filelock.WriteJSON(result.OutputPath, items, false); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	result.Duration = time.Since(start)
	b.logger.LogLayerComplete(*result)
	return result, nil
}

// buildMod extracts every definition of one mod root. Document counts and
// skipped documents are added to result.
func (b *Builder) buildMod(ctx context.Context, layer, modDir string, result *models.LayerResult) ([]models.ItemRecord, error) {
	display := b.discoverer.DisplayName(modDir)

	scan, err := fileutil.ScanDirectory(modDir, fileutil.ScanOptions{
		Extensions:  []string{".xml"},
		Recursive:   true,
		ExcludeDirs: b.opts.Prune,
	})
	if err != nil {
		b.logger.LogWarn(fmt.Sprintf("[%s] %s: %v", layer, display, err))
		return nil, nil
	}
	for _, serr := range scan.Errors {
		b.logger.LogWarn(fmt.Sprintf("[%s] %s: %v", layer, display, serr))
	}

	var items []models.ItemRecord
	documents := 0
	for _, file := range scan.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.isAnchor(file) {
			continue
		}
		documents++

		elements, err := b.extractor.ExtractFile(file)
		if err != nil {
			skipped := models.SkippedDocument{Path: file, Message: err.Error()}
			var docErr *defs.DocumentError
			if errors.As(err, &docErr) {
				skipped.Message = docErr.Message
			}
			result.Skipped = append(result.Skipped, skipped)
			b.logger.LogDocumentSkipped(layer, skipped)
			continue
		}

		for _, el := range elements {
			b.registry.Accumulate(el.Name, el)
			items = append(items, models.ItemRecord{
				DefType:    el.Name,
				DefName:    defs.DefName(el),
				ModDisplay: display,
				Layer:      layer,
				Path:       relPath(modDir, file),
				AbsPath:    filepath.ToSlash(file),
				XML:        defs.Render(el),
				TagMap:     defs.TagMap(el),
			})
		}
	}

	result.Documents += documents
	b.logger.LogModScanned(layer, display, documents, len(items))
	return items, nil
}

// isAnchor reports whether file is a mod anchor file such as
// About/About.xml, at any depth. The comparison ignores case.
func (b *Builder) isAnchor(file string) bool {
	anchor := strings.Split(strings.ToLower(filepath.ToSlash(b.discoverer.Options().AnchorPath)), "/")
	parts := strings.Split(strings.ToLower(filepath.ToSlash(file)), "/")
	if len(parts) < len(anchor) {
		return false
	}
	tail := parts[len(parts)-len(anchor):]
	for i := range anchor {
		if tail[i] != anchor[i] {
			return false
		}
	}
	return true
}

// relPath returns file relative to modDir with "/" separators, or the
// file's base name when it does not lie under modDir.
func relPath(modDir, file string) string {
	if !modroot.Contains(modDir, file) {
		return filepath.Base(file)
	}
	rel, err := filepath.Rel(modDir, file)
	if err != nil {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string) {}
func (nopLogger) LogWarn(string) {}
func (nopLogger) LogLayerStart(string, []string) {}
func (nopLogger) LogModScanned(string, string, int, int) {}
func (nopLogger) LogDocumentSkipped(string, models.SkippedDocument) {}
func (nopLogger) LogLayerComplete(models.LayerResult) {}
