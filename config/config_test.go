package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayooluwa/lapse/internal/models"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	s, err := load(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected settings file to be created: %v", err)
	}

	if !s.Display.DarkTheme {
		t.Error("dark theme should default to true")
	}

	if s.SplitMode() != models.ModeRadio {
		t.Errorf("default mode = %s, want radio", s.SplitMode())
	}

	if s.Intervals.Animating != time.Second {
		t.Errorf("animating interval = %v, want 1s", s.Intervals.Animating)
	}

	if s.Intervals.Idle != 10*time.Second {
		t.Errorf("idle interval = %v, want 10s", s.Intervals.Idle)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	contents := `display:
  dark_theme: false
tracking:
  split_mode: checkbox
intervals:
  animating: 500ms
`

	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := load(path)
	if err != nil {
		t.Fatal(err)
	}

	if s.Display.DarkTheme {
		t.Error("dark theme should be false")
	}

	if s.SplitMode() != models.ModeCheckbox {
		t.Errorf("mode = %s, want checkbox", s.SplitMode())
	}

	if s.Intervals.Animating != 500*time.Millisecond {
		t.Errorf("animating interval = %v, want 500ms", s.Intervals.Animating)
	}
}

func TestSplitModeFallsBackToRadio(t *testing.T) {
	var s Settings

	s.Tracking.SplitMode = "bogus"

	if s.SplitMode() != models.ModeRadio {
		t.Errorf("mode = %s, want radio fallback", s.SplitMode())
	}
}
