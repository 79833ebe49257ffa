package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harrison/rimdefs/internal/models"
)

// OrderLayers returns the standard layers first, in their fixed order,
// followed by any other layers in the order given. Every standard layer
// is present in the output, with no paths when roots does not name it.
func OrderLayers(roots []models.ScanRoot) []models.ScanRoot {
	byName := make(map[string]models.ScanRoot, len(roots))
	for _, r := range roots {
		byName[r.Layer] = r
	}

	out := make([]models.ScanRoot, 0, len(roots)+len(models.StandardLayers))
	for _, name := range models.StandardLayers {
		r, ok := byName[name]
		if !ok {
			r = models.ScanRoot{Layer: name}
		}
		out = append(out, r)
	}
	for _, r := range roots {
		if !models.IsStandardLayer(r.Layer) {
			out = append(out, r)
		}
	}
	return out
}

// SelectLayers keeps the layers named in selected, preserving the order of
// roots. An empty selection keeps every layer. Naming a layer that does
// not exist is an error.
func SelectLayers(roots []models.ScanRoot, selected []string) ([]models.ScanRoot, error) {
	if len(selected) == 0 {
		return roots, nil
	}

	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		s = strings.TrimSpace(s)
		if s != "" {
			want[s] = true
		}
	}
	if len(want) == 0 {
		return roots, nil
	}

	out := make([]models.ScanRoot, 0, len(want))
	for _, r := range roots {
		if want[r.Layer] {
			out = append(out, r)
			delete(want, r.Layer)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for name := range want {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown layer(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
