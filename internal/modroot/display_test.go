package modroot

import (
	"path/filepath"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		want   string
	}{
		{
			name:   "name element",
			anchor: `<ModMetaData><name>Vanilla Expanded</name><author>x</author></ModMetaData>`,
			want:   "Vanilla Expanded",
		},
		{
			name:   "first non-blank name wins",
			anchor: `<ModMetaData><name>  </name><modDependencies><li><name>Harmony</name></li></modDependencies></ModMetaData>`,
			want:   "Harmony",
		},
		{
			name:   "trimmed",
			anchor: "<ModMetaData>\n  <name>\n    Padded Mod\n  </name>\n</ModMetaData>",
			want:   "Padded Mod",
		},
		{
			name:   "no name falls back to directory",
			anchor: `<ModMetaData><packageId>a.b</packageId></ModMetaData>`,
			want:   "MyMod",
		},
		{
			name:   "malformed falls back to directory",
			anchor: `<ModMetaData><name>Broken</ModMetaData>`,
			want:   "MyMod",
		},
	}

	d := newDiscoverer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := filepath.Join(t.TempDir(), "MyMod")
			mkfile(t, mod, "About/About.xml", tt.anchor)
			if got := d.DisplayName(mod); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("missing anchor", func(t *testing.T) {
		mod := filepath.Join(t.TempDir(), "Loose")
		mkdir(t, mod, "Defs")
		if got := d.DisplayName(mod); got != "Loose" {
			t.Errorf("DisplayName() = %q, want Loose", got)
		}
	})
}
