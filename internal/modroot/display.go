package modroot

import (
	"path/filepath"
	"strings"

	"github.com/harrison/rimdefs/internal/defs"
)

// DisplayName returns the mod's human-readable name: the first non-blank
// name element in its anchor file, or the directory's base name when the
// anchor is missing, unparseable or has no name.
//
// A blank first name does not end the search: later name elements are
// still tried before falling back to the directory name.
func (d *Discoverer) DisplayName(modDir string) string {
	fallback := filepath.Base(modDir)

	root, err := defs.ParseFile(filepath.Join(modDir, filepath.FromSlash(d.opts.AnchorPath)))
	if err != nil {
		return fallback
	}

	name := ""
	root.Walk(func(el *defs.Element) {
		if name != "" || el == root || el.Name != "name" {
			return
		}
		name = strings.TrimSpace(el.Text)
	})
	if name == "" {
		return fallback
	}
	return name
}
