// Package fileutil provides the pruned directory scan used to enumerate
// candidate definition documents under a mod root.
//
// # Scanning
//
// ScanDirectory walks a directory with filepath.WalkDir and returns the
// absolute, sorted paths of the files whose extension is in
// ScanOptions.Extensions. Directories named in ScanOptions.ExcludeDirs are
// pruned before descent; names are compared case-insensitively, so
// "Languages" and "LANGUAGES" are both pruned by "languages".
//
//	result, err := fileutil.ScanDirectory(modRoot, fileutil.ScanOptions{
//	    Extensions:  []string{".xml"},
//	    Recursive:   true,
//	    ExcludeDirs: fileutil.PruneSet(false, []string{"Patches"}),
//	})
//
// # Errors
//
// Only a missing or non-directory root fails the scan. Unreadable
// subdirectories and unresolvable paths are collected in ScanResult.Errors
// and the walk continues.
//
// # Prune set
//
// DefaultPruneDirs lists the asset, localisation, build and VCS
// directories a mod tree carries. PruneSet derives the effective list from
// it for one build.
package fileutil
