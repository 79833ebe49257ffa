package display

import (
	"fmt"
	"os"

	"github.com/harrison/rimdefs/internal/models"
)

// MissingRoots returns "[layer] path" for every scan root that is not an
// existing directory, in layer order.
func MissingRoots(roots []models.ScanRoot) []string {
	var missing []string
	for _, r := range roots {
		for _, p := range r.Paths {
			info, err := os.Stat(p)
			if err != nil || !info.IsDir() {
				missing = append(missing, fmt.Sprintf("[%s] %s", r.Layer, p))
			}
		}
	}
	return missing
}
