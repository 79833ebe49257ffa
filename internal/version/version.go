// Package version detects the game version from Version.txt markers.
package version

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// MarkerFile is the name of the version marker file.
const MarkerFile = "Version.txt"

// Unknown is the version recorded when nothing else is known.
const Unknown = "unknown"

// Detect walks upward from each path to the filesystem root and reads the
// first Version.txt it meets. The most frequent non-blank value wins, with
// ties going to the value seen first. ok is false when no path yields a
// value.
func Detect(paths []string) (string, bool) {
	var (
		order  []string
		counts = make(map[string]int)
	)
	for _, p := range paths {
		dir := nearestMarkerDir(p)
		if dir == "" {
			continue
		}
		v := readMarker(filepath.Join(dir, MarkerFile))
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, bestCount > 0
}

// nearestMarkerDir returns the closest ancestor of path, path included,
// that holds a regular Version.txt file, or "" when there is none.
func nearestMarkerDir(path string) string {
	cur, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	for {
		info, err := os.Stat(filepath.Join(cur, MarkerFile))
		if err == nil && info.Mode().IsRegular() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}

// readMarker returns the first non-blank line of the marker, trimmed.
// Undecodable bytes are dropped and read errors yield "".
func readMarker(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	sc := bufio.NewScanner(bytes.NewReader(bytes.ToValidUTF8(data, nil)))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// Resolve applies the version precedence: an explicit override, then the
// detected value, then the configured value, then Unknown.
func Resolve(explicit, detected, configured string) string {
	for _, v := range []string{explicit, detected, configured} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return Unknown
}
