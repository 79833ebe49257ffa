package fileutil

import (
	"sort"
	"strings"
)

// LanguagesDir is the localisation directory, pruned unless languages are included.
const LanguagesDir = "languages"

// DefaultPruneDirs are directory names skipped during a deep mod scan.
// They hold assets, localisation, build output and VCS metadata, none of
// which carry definitions.
var DefaultPruneDirs = []string{
	LanguagesDir, "textures", "assetbundles", "assemblies", "sounds", "meshes", "shaders",
	".git", ".svn", "__macosx", ".idea", ".vs", "obj", "bin",
}

// PruneSet builds the lower-cased, sorted prune list from the defaults.
// includeLanguages drops the languages directory; extra names are added.
func PruneSet(includeLanguages bool, extra []string) []string {
	set := make(map[string]struct{}, len(DefaultPruneDirs)+len(extra))
	for _, name := range DefaultPruneDirs {
		set[name] = struct{}{}
	}
	if includeLanguages {
		delete(set, LanguagesDir)
	}
	for _, name := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
