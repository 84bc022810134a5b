package field

import (
	"math"
	"testing"
)

func TestClampDensity(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, MinDensity},
		{"negative", -3, MinDensity},
		{"tiny", 0.0001, 0.0001},
		{"below slider minimum", 0.005, 0.005},
		{"half", 0.5, 0.5},
		{"one", 1, 1},
		{"over", 1.7, 1},
		{"nan", math.NaN(), 1},
		{"inf", math.Inf(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDensity(tt.in); got != tt.want {
				t.Errorf("ClampDensity(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParticleCount(t *testing.T) {
	tests := []struct {
		max     int
		density float64
		groups  int
		want    int
	}{
		{100000, 0.5, 20, 50000},
		{100000, 1, 20, 100000},
		{75000, 1, 15, 75000},
		{95000, 0.25, 18, 23750},
		{50000, 0, 12, 500},
		{10, 0.01, 12, 12},
		{100000, 0.005, 20, 500},
		{75000, 0.002, 15, 150},
		{50000, 0.0001, 12, 12},
	}
	for _, tt := range tests {
		if got := ParticleCount(tt.max, tt.density, tt.groups); got != tt.want {
			t.Errorf("ParticleCount(%d, %v, %d) = %d, want %d", tt.max, tt.density, tt.groups, got, tt.want)
		}
	}
}

func TestGroupSizes(t *testing.T) {
	for _, tc := range []struct{ count, groups int }{
		{100, 20}, {101, 20}, {119, 20}, {12, 12}, {75000, 15}, {31635, 18},
	} {
		sizes := GroupSizes(tc.count, tc.groups)
		if len(sizes) != tc.groups {
			t.Fatalf("len = %d, want %d", len(sizes), tc.groups)
		}
		sum := 0
		for _, s := range sizes {
			if s < 1 {
				t.Errorf("count=%d groups=%d: empty group", tc.count, tc.groups)
			}
			sum += s
		}
		if sum != tc.count {
			t.Errorf("count=%d groups=%d: sum = %d", tc.count, tc.groups, sum)
		}
	}
}

func TestProgress(t *testing.T) {
	if Progress(0, 1) != 0 {
		t.Error("single particle group should sit at 0")
	}
	if Progress(0, 5) != 0 || Progress(4, 5) != 1 || Progress(2, 5) != 0.5 {
		t.Error("progress should span [0,1]")
	}
}

func TestNormalized(t *testing.T) {
	p := VisualParams{Speed: -1, Density: 2, AudioReactivity: 3}.Normalized()
	if p.Speed != 1 || p.Density != 1 || p.AudioReactivity != 1 {
		t.Errorf("Normalized = %+v", p)
	}
}

func TestNeedsRegen(t *testing.T) {
	base := DefaultParams()
	base.Theme = "ocean"

	speed := base
	speed.Speed = 2
	if base.NeedsRegen(speed) {
		t.Error("speed change should not regenerate")
	}

	preset := base
	preset.ColorPreset = "arctic"
	if !base.NeedsRegen(preset) {
		t.Error("preset change should regenerate")
	}

	// Both clamp to 1
	dens := base
	dens.Density = 5
	if base.NeedsRegen(dens) {
		t.Error("equivalent clamped densities should not regenerate")
	}
}

func TestFieldValid(t *testing.T) {
	f := New("x", "y", 10, 2)
	if !f.Valid() {
		t.Fatal("new field should be valid")
	}
	f.Positions = f.Positions[:3]
	if f.Valid() {
		t.Error("truncated positions should be invalid")
	}
	var nilField *Field
	if nilField.Valid() {
		t.Error("nil field should be invalid")
	}
}

func TestRenderBuffersEnsure(t *testing.T) {
	var rb RenderBuffers
	rb.Ensure(100)
	if len(rb.Positions) != 300 || len(rb.Colors) != 300 || rb.Count != 100 {
		t.Fatalf("Ensure(100): %d %d %d", len(rb.Positions), len(rb.Colors), rb.Count)
	}
	p := &rb.Positions[0]
	rb.Ensure(50)
	if &rb.Positions[0] != p {
		t.Error("shrinking should reuse storage")
	}
	if len(rb.Positions) != 150 {
		t.Errorf("len = %d, want 150", len(rb.Positions))
	}
}
