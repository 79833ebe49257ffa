package modroot

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Contains reports whether path is base or lies below it. Paths are
// compared lexically; on Windows the comparison ignores case.
func Contains(base, path string) bool {
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		base = strings.ToLower(base)
	}
	if len(base) == 0 {
		return true
	}
	if path == base {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(base, sep) {
		base += sep
	}
	if !strings.HasSuffix(path, sep) {
		path += sep
	}
	return strings.HasPrefix(path, base)
}
