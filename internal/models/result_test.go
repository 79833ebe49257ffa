package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildResultTotals(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := BuildResult{
		Layers: []LayerResult{
			{Layer: LayerOfficial, Items: 10, Skipped: []SkippedDocument{{Path: "a"}}},
			{Layer: LayerWorkshop, Items: 5},
			{Layer: LayerDev, Items: 0, Skipped: []SkippedDocument{{Path: "b"}, {Path: "c"}}},
		},
		StartedAt: start,
	}

	if got := r.TotalItems(); got != 15 {
		t.Errorf("TotalItems() = %d, want 15", got)
	}
	if got := r.TotalSkipped(); got != 3 {
		t.Errorf("TotalSkipped() = %d, want 3", got)
	}
	if got := r.Duration(); got != 0 {
		t.Errorf("Duration() of unfinished run = %v, want 0", got)
	}

	r.FinishedAt = start.Add(3 * time.Second)
	if got := r.Duration(); got != 3*time.Second {
		t.Errorf("Duration() = %v, want 3s", got)
	}
}

func TestItemRecordFieldOrder(t *testing.T) {
	rec := ItemRecord{
		DefType:    "ThingDef",
		DefName:    "Gun_Bolt",
		ModDisplay: "Core",
		Layer:      LayerOfficial,
		Path:       "Defs/Weapons.xml",
		AbsPath:    "/data/Core/Defs/Weapons.xml",
		XML:        "raw",
		TagMap:     map[string][]string{"defName": {"Gun_Bolt"}},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"defType":"ThingDef","defName":"Gun_Bolt","modDisplay":"Core","layer":"official","path":"Defs/Weapons.xml","absPath":"/data/Core/Defs/Weapons.xml","xml":"raw","tagMap":{"defName":["Gun_Bolt"]}}`
	if string(data) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", data, want)
	}
}

func TestValidLayerName(t *testing.T) {
	tests := map[string]bool{
		"official":  true,
		"dev":       true,
		"local-mods": true,
		"mods_2":    true,
		"":          false,
		"Dev":       false,
		"a/b":       false,
		"..":        false,
		"has space": false,
	}
	for name, want := range tests {
		if got := ValidLayerName(name); got != want {
			t.Errorf("ValidLayerName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLayerHelpers(t *testing.T) {
	if !IsStandardLayer(LayerWorkshop) || IsStandardLayer("extra") {
		t.Error("IsStandardLayer mismatch")
	}
	if got := ItemsFileName(LayerDev); got != "items.dev.json" {
		t.Errorf("ItemsFileName() = %q", got)
	}
	if m := NewMeta("1.5"); m.DefTypes == nil || m.Enums == nil || m.Types == nil {
		t.Error("NewMeta should initialise all maps")
	}
}
