package engine

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/themes"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := New(themes.NewRegistry(), opts)
	t.Cleanup(e.Close)
	return e
}

func activate(t *testing.T, e *Engine, theme string, density float64) {
	t.Helper()
	p := field.DefaultParams()
	p.Theme = theme
	p.Density = density
	p.Seed = 99
	if err := e.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
}

func TestIdleTick(t *testing.T) {
	e := newTestEngine(t, Options{})
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
	if _, err := e.Tick(0, nil); !errors.Is(err, ErrNoField) {
		t.Errorf("Tick error = %v, want ErrNoField", err)
	}
	if e.CurrentField() != nil {
		t.Error("idle engine should have no field")
	}
}

func TestUnknownThemeKeepsState(t *testing.T) {
	e := newTestEngine(t, Options{})
	if err := e.Activate("nope"); !errors.Is(err, themes.ErrUnknownTheme) {
		t.Fatalf("Activate error = %v", err)
	}
	if e.State() != Idle {
		t.Error("failed activation should stay idle")
	}

	activate(t, e, "zenfocus", 0.05)
	before := e.CurrentField()
	if err := e.SetTheme("nope"); !errors.Is(err, themes.ErrUnknownTheme) {
		t.Fatalf("SetTheme error = %v", err)
	}
	if e.CurrentField() != before || e.Params().Theme != "zenfocus" {
		t.Error("unknown theme should not disturb the active field")
	}
}

func TestActivateBuildsField(t *testing.T) {
	e := newTestEngine(t, Options{})
	if err := e.Activate("ocean-surface"); err != nil {
		t.Fatal(err)
	}
	if e.State() != FieldReady {
		t.Fatalf("state = %v", e.State())
	}
	f := e.CurrentField()
	if f.Theme != "ocean" || f.Count != 75000 || f.Preset != "midnight" {
		t.Errorf("field = %s/%s count %d", f.Theme, f.Preset, f.Count)
	}
	if e.Params().Theme != "ocean" {
		t.Errorf("params theme = %q, want canonical id", e.Params().Theme)
	}
}

func TestRegenerationRules(t *testing.T) {
	e := newTestEngine(t, Options{})
	activate(t, e, "brainboost", 0.05)
	first := e.CurrentField()
	firstPos := append([]float32(nil), first.Positions...)

	tests := []struct {
		name  string
		apply func() error
		regen bool
	}{
		{"speed", func() error { return e.SetSpeed(3) }, false},
		{"reactivity", func() error { return e.SetAudioReactivity(0.2) }, false},
		{"density", func() error { return e.SetDensity(0.1) }, true},
		{"preset", func() error { return e.SetColorPreset("softPink") }, true},
		{"same preset", func() error { return e.SetColorPreset("softPink") }, false},
		{"theme", func() error { return e.SetTheme("moonlight") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.CurrentField()
			if err := tt.apply(); err != nil {
				t.Fatal(err)
			}
			changed := e.CurrentField() != before
			if changed != tt.regen {
				t.Errorf("regenerated = %v, want %v", changed, tt.regen)
			}
		})
	}

	// Replaced fields are never mutated in place
	for i := range firstPos {
		if firstPos[i] != first.Positions[i] {
			t.Fatalf("old field mutated at %d", i)
		}
	}
}

func TestUnknownPresetFallsBack(t *testing.T) {
	e := newTestEngine(t, Options{})
	activate(t, e, "mentalfocus", 0.02)
	if err := e.SetColorPreset("bogus"); err != nil {
		t.Fatalf("unknown preset should not error: %v", err)
	}
	if got := e.CurrentField().Preset; got != "electric" {
		t.Errorf("preset = %q, want electric", got)
	}
}

func TestTickMatchesSingleThreaded(t *testing.T) {
	e := newTestEngine(t, Options{Workers: 4, ParallelThreshold: 1})
	activate(t, e, "creativeflow", 0.1)

	bands := &field.Bands{Bass: 0.4, Mid: 0.7, High: 0.2}
	rb, err := e.Tick(2.75, bands)
	if err != nil {
		t.Fatal(err)
	}

	var want field.RenderBuffers
	e.Descriptor().Update(e.CurrentField(), 2.75, bands, e.Params(), &want)

	if rb.Count != want.Count {
		t.Fatalf("count %d, want %d", rb.Count, want.Count)
	}
	for i := range want.Positions {
		if rb.Positions[i] != want.Positions[i] || rb.Colors[i] != want.Colors[i] {
			t.Fatalf("parallel output differs at %d", i)
		}
	}
}

func TestTransformIntegration(t *testing.T) {
	e := newTestEngine(t, Options{})
	activate(t, e, "mentalfocus", 0.02)

	var rb *field.RenderBuffers
	var err error
	for i := 0; i <= 120; i++ {
		if rb, err = e.Tick(float64(i)/60, nil); err != nil {
			t.Fatal(err)
		}
	}
	// 2 seconds at speed 1 with neutral bands: 120 steps of 0.002
	if math.Abs(rb.Transform.RotY-0.24) > 1e-9 {
		t.Errorf("RotY = %v, want 0.24", rb.Transform.RotY)
	}
	if math.Abs(rb.Transform.RotX-0.18) > 1e-9 {
		t.Errorf("RotX = %v, want 0.18", rb.Transform.RotX)
	}

	// Same elapsed at 30 fps accumulates the same rotation
	e2 := newTestEngine(t, Options{})
	activate(t, e2, "mentalfocus", 0.02)
	for i := 0; i <= 60; i++ {
		if rb, err = e2.Tick(float64(i)/30, nil); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(rb.Transform.RotY-0.24) > 1e-9 {
		t.Errorf("30fps RotY = %v, want 0.24", rb.Transform.RotY)
	}
}

func TestThemeSwitchResetsTransform(t *testing.T) {
	e := newTestEngine(t, Options{})
	activate(t, e, "brainboost", 0.02)
	for i := 0; i < 30; i++ {
		if _, err := e.Tick(float64(i)/60, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.SetTheme("ocean"); err != nil {
		t.Fatal(err)
	}
	rb, err := e.Tick(0.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rb.Transform.RotY != 0 {
		t.Errorf("ocean has no spin, RotY = %v", rb.Transform.RotY)
	}
}

func TestRegenerationKeepsTransform(t *testing.T) {
	e := newTestEngine(t, Options{})
	activate(t, e, "mentalfocus", 0.02)
	for i := 0; i <= 60; i++ {
		if _, err := e.Tick(float64(i)/60, nil); err != nil {
			t.Fatal(err)
		}
	}
	before := e.CurrentField()
	if err := e.SetDensity(0.03); err != nil {
		t.Fatal(err)
	}
	if e.CurrentField() == before {
		t.Fatal("density change should regenerate the field")
	}
	rb, err := e.Tick(61.0/60, nil)
	if err != nil {
		t.Fatal(err)
	}
	// 61 steps of 0.002, uninterrupted by the new field
	if math.Abs(rb.Transform.RotY-0.122) > 1e-9 {
		t.Errorf("RotY = %v, want 0.122", rb.Transform.RotY)
	}
}

func TestConcurrentSwapNeverTears(t *testing.T) {
	e := newTestEngine(t, Options{Workers: 2, ParallelThreshold: 1})
	activate(t, e, "moonlight", 0.05)
	valid := map[int]bool{2500: true, 5000: true}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			d := 0.05
			if i%2 == 0 {
				d = 0.1
			}
			if err := e.SetDensity(d); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		rb, err := e.Tick(float64(i)/60, &field.Bands{Bass: 1})
		if err != nil {
			t.Fatal(err)
		}
		if !valid[rb.Count] || len(rb.Positions) != 3*rb.Count || len(rb.Colors) != 3*rb.Count {
			t.Fatalf("torn frame: count %d, %d positions", rb.Count, len(rb.Positions))
		}
	}
	wg.Wait()
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || FieldReady.String() != "field_ready" {
		t.Error("unexpected state strings")
	}
}
