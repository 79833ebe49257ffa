package version

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMarker(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MarkerFile), []byte(content), 0644); err != nil {
		t.Fatalf("write marker: %v", err)
	}
}

func TestDetectMostFrequent(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	c := filepath.Join(base, "c")
	writeMarker(t, a, "1.4.3901 rev88\n")
	writeMarker(t, b, "\n  1.4.3901 rev88  \n")
	writeMarker(t, c, "1.5.4062 rev1\n")

	got, ok := Detect([]string{filepath.Join(c, "Data"), a, filepath.Join(b, "Data", "Core")})
	if !ok {
		t.Fatal("Detect() ok = false")
	}
	if got != "1.4.3901 rev88" {
		t.Errorf("Detect() = %q, want 1.4.3901 rev88", got)
	}
}

func TestDetectTieGoesToFirst(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	writeMarker(t, a, "1.5")
	writeMarker(t, b, "1.4")

	got, ok := Detect([]string{b, a})
	if !ok || got != "1.4" {
		t.Errorf("Detect() = %q, %v; want 1.4, true", got, ok)
	}
}

func TestDetectStopsAtNearestMarker(t *testing.T) {
	base := t.TempDir()
	writeMarker(t, base, "outer")
	inner := filepath.Join(base, "RimWorld")
	writeMarker(t, inner, "   \n\n")

	if got, ok := Detect([]string{filepath.Join(inner, "Data")}); ok {
		t.Errorf("Detect() = %q, want no detection from blank nearest marker", got)
	}
}

func TestDetectIgnoresDirectoryMarker(t *testing.T) {
	base := t.TempDir()
	writeMarker(t, base, "1.3")
	inner := filepath.Join(base, "game")
	if err := os.MkdirAll(filepath.Join(inner, MarkerFile), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, ok := Detect([]string{inner})
	if !ok || got != "1.3" {
		t.Errorf("Detect() = %q, %v; want 1.3, true", got, ok)
	}
}

func TestDetectNothing(t *testing.T) {
	if got, ok := Detect(nil); ok || got != "" {
		t.Errorf("Detect(nil) = %q, %v", got, ok)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name                           string
		explicit, detected, configured string
		want                           string
	}{
		{"explicit wins", "1.6", "1.5", "1.4", "1.6"},
		{"detected over config", "", "1.5", "1.4", "1.5"},
		{"config fallback", "", "", "1.4", "1.4"},
		{"unknown", "", "", "", Unknown},
		{"blank explicit ignored", "  ", "1.5", "", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.explicit, tt.detected, tt.configured); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
