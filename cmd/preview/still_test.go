package main

import (
	"errors"
	"testing"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/themes"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Visual.Density = 0.01
	cfg.Visual.Seed = 7
	return cfg
}

func TestRenderStill(t *testing.T) {
	cfg := testConfig(t)
	req := stillRequest{
		Theme:  "ocean",
		Preset: "arctic",
		At:     0.2,
		Bands:  field.Bands{Bass: 0.5, Mid: 0.3, High: 0.2},
		Width:  48,
		Height: 27,
	}
	img, err := renderStill(cfg, themes.NewRegistry(), pipeline.SoftwareRenderer, req)
	if err != nil {
		t.Fatalf("renderStill: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 27 {
		t.Errorf("bounds = %v", b)
	}
}

func TestRenderStillErrors(t *testing.T) {
	cfg := testConfig(t)
	reg := themes.NewRegistry()

	if _, err := renderStill(cfg, reg, pipeline.SoftwareRenderer, stillRequest{Theme: "ocean"}); err == nil {
		t.Error("zero size should fail")
	}
	_, err := renderStill(cfg, reg, pipeline.SoftwareRenderer, stillRequest{Theme: "nope", Width: 8, Height: 8})
	if !errors.Is(err, themes.ErrUnknownTheme) {
		t.Errorf("unknown theme error = %v", err)
	}
}

func TestRenderSheet(t *testing.T) {
	cfg := testConfig(t)
	reg := themes.NewRegistry()
	img, err := renderSheet(cfg, reg, pipeline.SoftwareRenderer, stillRequest{Width: 16, Height: 9})
	if err != nil {
		t.Fatalf("renderSheet: %v", err)
	}
	// six themes fill a 3x2 grid
	if n := len(reg.All()); n != 6 {
		t.Fatalf("themes = %d", n)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 18 {
		t.Errorf("bounds = %v", b)
	}
}
