// Package modroot finds the mod root directories under a scan root.
//
// A mod root is nominated in two ways: a directory holding the anchor file
// About/About.xml, and the nearest anchored ancestor of a Defs directory
// (or the Defs directory's parent when there is none). Nominations are
// then reduced to a minimal set in which no root contains another.
package modroot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultAnchorPath  = "About/About.xml"
	DefaultDefsDirName = "Defs"
	DefaultCacheSize   = 4096
)

// Options configures discovery.
type Options struct {
	AnchorPath  string // Anchor file, relative to a mod root
	DefsDirName string // Name of the definitions directory
	CacheSize   int    // Entries per memo cache
}

// DefaultOptions returns the standard RimWorld layout.
func DefaultOptions() Options {
	return Options{
		AnchorPath:  DefaultAnchorPath,
		DefsDirName: DefaultDefsDirName,
		CacheSize:   DefaultCacheSize,
	}
}

// Result holds the mod roots of one scan root and the non-fatal errors
// met while walking it.
type Result struct {
	Roots  []string
	Errors []error
}

// Discoverer finds mod roots. Anchor lookups and real path resolutions
// are memoised, so one Discoverer should be reused across the scan roots
// of a build. It is not safe for concurrent use.
type Discoverer struct {
	opts      Options
	anchors   *lru.Cache[string, bool]
	realpaths *lru.Cache[string, string]
}

// NewDiscoverer creates a Discoverer. Zero option fields take defaults.
func NewDiscoverer(opts Options) (*Discoverer, error) {
	def := DefaultOptions()
	if opts.AnchorPath == "" {
		opts.AnchorPath = def.AnchorPath
	}
	if opts.DefsDirName == "" {
		opts.DefsDirName = def.DefsDirName
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}

	anchors, err := lru.New[string, bool](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create anchor cache: %w", err)
	}
	realpaths, err := lru.New[string, string](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create path cache: %w", err)
	}
	return &Discoverer{opts: opts, anchors: anchors, realpaths: realpaths}, nil
}

// Options returns the effective options.
func (d *Discoverer) Options() Options {
	return d.opts
}

// Discover walks scanRoot and returns its minimal, sorted set of mod
// roots. A missing scan root yields an empty result. Symlinked
// directories below the scan root are not followed. Only context
// cancellation is returned as an error.
func (d *Discoverer) Discover(ctx context.Context, scanRoot string) (*Result, error) {
	result := &Result{Roots: []string{}}

	root, err := filepath.Abs(scanRoot)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to resolve %s: %w", scanRoot, err))
		return result, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, fmt.Errorf("failed to access %s: %w", root, err))
		}
		return result, nil
	}
	if !info.IsDir() {
		return result, nil
	}
	// WalkDir does not descend into a symlinked root, so resolve it first.
	root = d.realpath(root)

	var candidates []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			if entry != nil && entry.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.hasAnchor(path) {
			candidates = append(candidates, path)
		}
		if path != root && entry.Name() == d.opts.DefsDirName {
			parent := filepath.Dir(path)
			if owner := d.nearestAnchor(parent, root); owner != "" {
				candidates = append(candidates, owner)
			} else {
				candidates = append(candidates, parent)
			}
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		result.Errors = append(result.Errors, fmt.Errorf("failed to walk %s: %w", root, err))
	}

	result.Roots = Minimal(d.resolveAll(candidates))
	SortPaths(result.Roots)
	return result, nil
}

// nearestAnchor walks upward from start, stopping at limit inclusive, and
// returns the first directory holding the anchor file.
func (d *Discoverer) nearestAnchor(start, limit string) string {
	cur := start
	for {
		if d.hasAnchor(cur) {
			return cur
		}
		parent := filepath.Dir(cur)
		if cur == limit || parent == cur || !Contains(limit, parent) {
			return ""
		}
		cur = parent
	}
}

func (d *Discoverer) hasAnchor(dir string) bool {
	if ok, hit := d.anchors.Get(dir); hit {
		return ok
	}
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(d.opts.AnchorPath)))
	ok := err == nil && !info.IsDir()
	d.anchors.Add(dir, ok)
	return ok
}

func (d *Discoverer) realpath(path string) string {
	if real, hit := d.realpaths.Get(path); hit {
		return real
	}
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = filepath.Clean(path)
	}
	d.realpaths.Add(path, real)
	return real
}

// RealPath returns the symlink-resolved form of path, or its cleaned form
// when it cannot be resolved.
func (d *Discoverer) RealPath(path string) string {
	return d.realpath(path)
}

func (d *Discoverer) resolveAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, d.realpath(p))
	}
	return out
}

// Minimal reduces paths to the subset in which no path contains another.
// Paths are visited shallowest first, then lexicographically, and a path
// is kept only when no kept path contains it. Equal paths collapse.
func Minimal(paths []string) []string {
	ordered := append([]string(nil), paths...)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := depth(ordered[i]), depth(ordered[j])
		if di != dj {
			return di < dj
		}
		return ordered[i] < ordered[j]
	})

	kept := make([]string, 0, len(ordered))
	for _, p := range ordered {
		covered := false
		for _, k := range kept {
			if Contains(k, p) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, p)
		}
	}
	return kept
}

// SortPaths orders paths case-insensitively by their slash-separated form.
func SortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return sortKey(paths[i]) < sortKey(paths[j])
	})
}

func sortKey(p string) string {
	return strings.ToLower(filepath.ToSlash(p))
}

func depth(p string) int {
	return strings.Count(filepath.Clean(p), string(filepath.Separator))
}
