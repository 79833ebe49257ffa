package display

import (
	"bytes"
	"testing"
)

func TestProgressIndicator(t *testing.T) {
	var buf bytes.Buffer
	pi := NewProgressIndicator(&buf, "Discovering mod roots", 2)

	pi.Start()
	pi.Step("/games/Data")
	pi.Detail("Core -> /games/Data/Core")
	pi.Step("/mods")
	pi.Complete("mod roots", 1)

	want := "Discovering mod roots:\n" +
		"\x1b[36m  [1/2] /games/Data\x1b[0m\n" +
		"        Core -> /games/Data/Core\n" +
		"\x1b[36m  [2/2] /mods\x1b[0m\n" +
		"\x1b[32m✓\x1b[0m Found 1 mod roots\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestProgressIndicatorStepCounts(t *testing.T) {
	tests := []struct {
		name  string
		total int
		steps int
		last  string
	}{
		{name: "single", total: 1, steps: 1, last: "\x1b[36m  [1/1] x\x1b[0m\n"},
		{name: "three", total: 3, steps: 3, last: "\x1b[36m  [3/3] x\x1b[0m\n"},
		{name: "beyond total", total: 1, steps: 2, last: "\x1b[36m  [2/1] x\x1b[0m\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewProgressIndicator(&bytes.Buffer{}, "t", tt.total)
			var buf bytes.Buffer
			for i := 0; i < tt.steps; i++ {
				buf.Reset()
				pi.writer = &buf
				pi.Step("x")
			}
			if got := buf.String(); got != tt.last {
				t.Errorf("last step = %q, want %q", got, tt.last)
			}
		})
	}
}
