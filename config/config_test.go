package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Visual.Theme != "mentalfocus" {
		t.Errorf("theme = %q, want mentalfocus", cfg.Visual.Theme)
	}
	if cfg.Audio.FFTSize != 512 {
		t.Errorf("fft_size = %d, want 512", cfg.Audio.FFTSize)
	}
	if cfg.Audio.HighBins != [2]int{150, 255} {
		t.Errorf("high_bins = %v", cfg.Audio.HighBins)
	}
	if cfg.Capture.Width != 1920 || cfg.Capture.Height != 1080 || cfg.Capture.FPS != 60 {
		t.Errorf("capture = %dx%d@%d", cfg.Capture.Width, cfg.Capture.Height, cfg.Capture.FPS)
	}
	if cfg.Derived.FrameInterval != time.Second/60 {
		t.Errorf("frame interval = %v", cfg.Derived.FrameInterval)
	}
	if cfg.Derived.VolumeFrac != 0.7 {
		t.Errorf("volume frac = %v, want 0.7", cfg.Derived.VolumeFrac)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("visual:\n  theme: ocean\naudio:\n  volume: 250\ncapture:\n  fps: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Visual.Theme != "ocean" {
		t.Errorf("theme = %q, want ocean", cfg.Visual.Theme)
	}
	// Untouched fields keep their defaults
	if cfg.Visual.Speed != 1.0 {
		t.Errorf("speed = %v, want 1.0", cfg.Visual.Speed)
	}
	if cfg.Audio.Volume != 100 {
		t.Errorf("volume = %v, want clamped to 100", cfg.Audio.Volume)
	}
	if cfg.Derived.FrameInterval != time.Second/30 {
		t.Errorf("frame interval = %v", cfg.Derived.FrameInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Visual.Density = 0.25

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Visual.Density != 0.25 {
		t.Errorf("density = %v, want 0.25", back.Visual.Density)
	}
}
