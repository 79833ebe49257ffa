package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/harrison/rimdefs/internal/history"
)

func TestHistoryEmpty(t *testing.T) {
	isolate(t)

	output, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(output, "No build history found.") {
		t.Errorf("output = %q", output)
	}

	_, err = execute(t, "history", "show", "abc")
	if !errors.Is(err, history.ErrRunNotFound) {
		t.Errorf("history show on empty history: err = %v", err)
	}
}
