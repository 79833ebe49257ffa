package fileutil

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"testing"
)

func createFiles(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("<Defs/>"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func relNames(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatalf("Rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   About/About.xml
	//   Defs/ThingDefs/Weapons.xml
	//   Defs/ThingDefs/Weapons.XML.bak
	//   Defs/Recipes.XML
	//   Languages/English/Keyed/Misc.xml
	//   LANGUAGES/French/Keyed/Misc.xml
	//   Textures/readme.xml
	//   .git/config.xml
	//   1.5/Defs/Late.xml
	//   Patches/Patch.xml
	files := []string{
		"About/About.xml",
		"Defs/ThingDefs/Weapons.xml",
		"Defs/ThingDefs/Weapons.XML.bak",
		"Defs/Recipes.XML",
		"Languages/English/Keyed/Misc.xml",
		"LANGUAGES/French/Keyed/Misc.xml",
		"Textures/readme.xml",
		".git/config.xml",
		"1.5/Defs/Late.xml",
		"Patches/Patch.xml",
	}
	createFiles(t, tmpDir, files)

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "default prune set",
			opts: ScanOptions{Extensions: []string{".xml"}, Recursive: true, ExcludeDirs: DefaultPruneDirs},
			want: []string{
				"1.5/Defs/Late.xml",
				"About/About.xml",
				"Defs/Recipes.XML",
				"Defs/ThingDefs/Weapons.xml",
				"Patches/Patch.xml",
			},
		},
		{
			name: "languages included",
			opts: ScanOptions{Extensions: []string{"xml"}, Recursive: true, ExcludeDirs: PruneSet(true, nil)},
			want: []string{
				"1.5/Defs/Late.xml",
				"About/About.xml",
				"Defs/Recipes.XML",
				"Defs/ThingDefs/Weapons.xml",
				"LANGUAGES/French/Keyed/Misc.xml",
				"Languages/English/Keyed/Misc.xml",
				"Patches/Patch.xml",
			},
		},
		{
			name: "extra exclude is case-insensitive",
			opts: ScanOptions{Extensions: []string{".xml"}, Recursive: true, ExcludeDirs: PruneSet(false, []string{"PATCHES", "1.5"})},
			want: []string{
				"About/About.xml",
				"Defs/Recipes.XML",
				"Defs/ThingDefs/Weapons.xml",
			},
		},
		{
			name: "non-recursive",
			opts: ScanOptions{Extensions: []string{".xml"}},
			want: []string{},
		},
		{
			name: "hidden dirs only pruned when listed",
			opts: ScanOptions{Extensions: []string{".xml"}, Recursive: true, ExcludeDirs: []string{"languages", "textures"}},
			want: []string{
				".git/config.xml",
				"1.5/Defs/Late.xml",
				"About/About.xml",
				"Defs/Recipes.XML",
				"Defs/ThingDefs/Weapons.xml",
				"Patches/Patch.xml",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tmpDir, tt.opts)
			if err != nil {
				t.Fatalf("ScanDirectory() error = %v", err)
			}
			if len(result.Errors) != 0 {
				t.Errorf("unexpected scan errors: %v", result.Errors)
			}
			got := relNames(t, tmpDir, result.Files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanDirectoryOutputIsAbsoluteAndSorted(t *testing.T) {
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"b.xml", "a/c.xml", "a.xml"})

	result, err := ScanDirectory(tmpDir, ScanOptions{Extensions: []string{".xml"}, Recursive: true})
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if !sort.StringsAreSorted(result.Files) {
		t.Errorf("files not sorted: %v", result.Files)
	}
	for _, f := range result.Files {
		if !filepath.IsAbs(f) {
			t.Errorf("path %q is not absolute", f)
		}
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := ScanDirectory(filepath.Join(tmpDir, "missing"), ScanOptions{}); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(tmpDir, "file.xml")
	createFiles(t, tmpDir, []string{"file.xml"})
	_, err := ScanDirectory(file, ScanOptions{})
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("expected not a directory error, got %v", err)
	}
}

func TestScanDirectoryUnreadableSubdir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission checks are not enforced")
	}
	tmpDir := t.TempDir()
	createFiles(t, tmpDir, []string{"ok/a.xml", "locked/b.xml"})
	locked := filepath.Join(tmpDir, "locked")
	if err := os.Chmod(locked, 0000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	result, err := ScanDirectory(tmpDir, ScanOptions{Extensions: []string{".xml"}, Recursive: true})
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if got := relNames(t, tmpDir, result.Files); !reflect.DeepEqual(got, []string{"ok/a.xml"}) {
		t.Errorf("files = %v, want [ok/a.xml]", got)
	}
	if len(result.Errors) == 0 {
		t.Error("expected the unreadable directory to be reported")
	}
}

func TestPruneSet(t *testing.T) {
	got := PruneSet(false, []string{" Patches ", "", "TEXTURES"})
	if !sort.StringsAreSorted(got) {
		t.Errorf("PruneSet not sorted: %v", got)
	}
	has := func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}
	if !has(got, "patches") || !has(got, "languages") {
		t.Errorf("PruneSet() = %v, want patches and languages", got)
	}
	if len(got) != len(DefaultPruneDirs)+1 {
		t.Errorf("len = %d, want %d", len(got), len(DefaultPruneDirs)+1)
	}

	if has(PruneSet(true, nil), "languages") {
		t.Error("includeLanguages should drop languages")
	}
}
