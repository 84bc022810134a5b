package themes

import (
	"errors"
	"math"
	"testing"

	"github.com/passeth/neural-visuals-v2/field"
)

const colorTol = 1e-6

func params(theme string, density float64, preset string, seed int64) field.VisualParams {
	p := field.DefaultParams()
	p.Theme = theme
	p.Density = density
	p.ColorPreset = preset
	p.Seed = seed
	return p
}

func TestCountMatchesDensity(t *testing.T) {
	reg := NewRegistry()
	for _, d := range reg.All() {
		for _, density := range []float64{0.002, 0.005, 0.05, 0.5, 1} {
			f := d.Generate(params(d.ID, density, "", 7))
			want := int(math.Floor(float64(d.MaxParticles) * density))
			if f.Count != want {
				t.Errorf("%s density=%v: count = %d, want %d", d.ID, density, f.Count, want)
			}
			if len(f.Positions) != 3*f.Count || len(f.BaseColors) != 3*f.Count {
				t.Errorf("%s density=%v: lengths %d/%d for count %d",
					d.ID, density, len(f.Positions), len(f.BaseColors), f.Count)
			}
		}
	}
}

func TestMentalFocusHalfDensity(t *testing.T) {
	d, err := NewRegistry().Get("mentalfocus")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Generate(params(d.ID, 0.5, "", 1)).Count; got != 50000 {
		t.Errorf("count = %d, want 50000", got)
	}
}

func TestInvalidDensityClamped(t *testing.T) {
	reg := NewRegistry()
	for _, d := range reg.All() {
		for _, density := range []float64{0, -1, math.NaN(), 4} {
			f := d.Generate(params(d.ID, density, "", 3))
			if f.Count < d.Groups {
				t.Errorf("%s density=%v: count %d below group count %d", d.ID, density, f.Count, d.Groups)
			}
			if !f.Valid() {
				t.Errorf("%s density=%v: invalid field", d.ID, density)
			}
		}
	}
}

func TestSeededGenerationReproducible(t *testing.T) {
	reg := NewRegistry()
	for _, d := range reg.All() {
		a := d.Generate(params(d.ID, 0.05, "", 42))
		b := d.Generate(params(d.ID, 0.05, "", 42))
		for i := range a.Positions {
			if a.Positions[i] != b.Positions[i] || a.BaseColors[i] != b.BaseColors[i] {
				t.Errorf("%s: seeded fields differ at %d", d.ID, i)
				break
			}
		}

		c := d.Generate(params(d.ID, 0.05, "", 43))
		if c.Count != a.Count {
			t.Errorf("%s: count changed with seed", d.ID)
		}
	}
}

func TestUnknownPresetUsesDefault(t *testing.T) {
	reg := NewRegistry()
	for _, d := range reg.All() {
		bogus := d.Generate(params(d.ID, 0.02, "no-such-preset", 9))
		def := d.Generate(params(d.ID, 0.02, d.DefaultPreset(), 9))
		if bogus.Preset != d.DefaultPreset() {
			t.Errorf("%s: preset = %q, want %q", d.ID, bogus.Preset, d.DefaultPreset())
		}
		for i := range def.BaseColors {
			if bogus.BaseColors[i] != def.BaseColors[i] {
				t.Errorf("%s: bogus preset colors differ from default at %d", d.ID, i)
				break
			}
		}
	}
}

func TestDefaultPresets(t *testing.T) {
	want := map[string]string{
		"mentalfocus":  "electric",
		"brainboost":   "electric",
		"creativeflow": "playful",
		"ocean":        "midnight",
		"zenfocus":     "calm",
		"moonlight":    "silver",
	}
	reg := NewRegistry()
	for id, preset := range want {
		d, err := reg.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if d.DefaultPreset() != preset {
			t.Errorf("%s default = %q, want %q", id, d.DefaultPreset(), preset)
		}
	}
}

func TestEveryPresetBuilds(t *testing.T) {
	for _, d := range NewRegistry().All() {
		for _, key := range d.Presets.Keys() {
			f := d.Generate(params(d.ID, 0.01, key, 5))
			if f.Preset != key {
				t.Errorf("%s/%s: resolved to %q", d.ID, key, f.Preset)
			}
		}
	}
}

// colorScale returns the factor range base colors may carry beyond the anchors.
func colorScale(id string) (lo, hi float64) {
	switch id {
	case "brainboost":
		return 0.7, 1.2
	case "zenfocus":
		return 0, 1
	}
	return 1, 1
}

func TestBaseColorsWithinPreset(t *testing.T) {
	for _, d := range NewRegistry().All() {
		for _, preset := range d.Presets.Presets() {
			f := d.Generate(params(d.ID, 0.05, preset.Key, 11))
			lo, hi := preset.Bounds()
			kLo, kHi := colorScale(d.ID)
			minC := [3]float64{lo.R * kLo, lo.G * kLo, lo.B * kLo}
			maxC := [3]float64{hi.R * kHi, hi.G * kHi, hi.B * kHi}
			for i, c := range f.BaseColors {
				ch := i % 3
				if float64(c) < minC[ch]-colorTol || float64(c) > maxC[ch]+colorTol {
					t.Errorf("%s/%s: channel %d of particle %d = %v outside [%v,%v]",
						d.ID, preset.Key, ch, i/3, c, minC[ch], maxC[ch])
					break
				}
			}
		}
	}
}

func TestOceanArcticScenario(t *testing.T) {
	reg := NewRegistry()
	d, err := reg.Get("ocean-surface")
	if err != nil {
		t.Fatal(err)
	}
	f := d.Generate(params(d.ID, 1.0, "arctic", 0))
	if f.Count != 75000 {
		t.Fatalf("count = %d, want 75000", f.Count)
	}

	arctic, err := reg.Resolve("ocean", "arctic")
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := arctic.Bounds()
	minC := [3]float64{lo.R, lo.G, lo.B}
	maxC := [3]float64{hi.R, hi.G, hi.B}
	for i, c := range f.BaseColors {
		ch := i % 3
		if float64(c) < minC[ch]-colorTol || float64(c) > maxC[ch]+colorTol {
			t.Fatalf("particle %d channel %d = %v outside arctic range [%v,%v]", i/3, ch, c, minC[ch], maxC[ch])
		}
	}
}

func TestUpdateAtTimeZero(t *testing.T) {
	for _, d := range NewRegistry().All() {
		p := params(d.ID, 0.05, "", 21)
		f := d.Generate(p)
		var rb field.RenderBuffers
		d.Update(f, 0, nil, p, &rb)

		if rb.Count != f.Count {
			t.Fatalf("%s: render count %d, field count %d", d.ID, rb.Count, f.Count)
		}
		fs := d.State(0, nil, p)
		for i := 0; i < f.Count; i++ {
			i3 := 3 * i
			x, y, z := float64(f.Positions[i3]), float64(f.Positions[i3+1]), float64(f.Positions[i3+2])
			for k := 0; k < 3; k++ {
				if off := math.Abs(float64(rb.Positions[i3+k] - f.Positions[i3+k])); off > d.DisplacementBound+1e-3 {
					t.Fatalf("%s particle %d axis %d: offset %v exceeds bound %v", d.ID, i, k, off, d.DisplacementBound)
				}
			}
			b := d.Variant.Brightness(x, y, z, fs)
			for k := 0; k < 3; k++ {
				want := math.Min(float64(f.BaseColors[i3+k])*b, d.Headroom)
				if got := float64(rb.Colors[i3+k]); math.Abs(got-want) > colorTol {
					t.Fatalf("%s particle %d channel %d: color %v, want %v", d.ID, i, k, got, want)
				}
			}
		}
		if rb.Transform.Scale != 1 || rb.Transform.RotY != 0 {
			t.Errorf("%s: transform at t=0 = %+v", d.ID, rb.Transform)
		}
	}
}

func TestHeadroomAndBoundAtFullAudio(t *testing.T) {
	full := &field.Bands{Bass: 1, Mid: 1, High: 1}
	for _, d := range NewRegistry().All() {
		p := params(d.ID, 0.05, "", 33)
		p.AudioReactivity = 1
		p.Speed = 2.5
		f := d.Generate(p)
		var rb field.RenderBuffers
		for _, elapsed := range []float64{0, 0.37, 1.9, 12.5, 240} {
			d.Update(f, elapsed, full, p, &rb)
			for i, c := range rb.Colors {
				if c < 0 || float64(c) > d.Headroom+colorTol {
					t.Fatalf("%s t=%v: color[%d] = %v exceeds headroom %v", d.ID, elapsed, i, c, d.Headroom)
				}
			}
			for i := range rb.Positions {
				if off := math.Abs(float64(rb.Positions[i] - f.Positions[i])); off > d.DisplacementBound+1e-3 {
					t.Fatalf("%s t=%v: offset %v exceeds bound %v", d.ID, elapsed, off, d.DisplacementBound)
				}
			}
		}
	}
}

func TestUpdateDoesNotMutateField(t *testing.T) {
	for _, d := range NewRegistry().All() {
		p := params(d.ID, 0.02, "", 4)
		f := d.Generate(p)
		pos := append([]float32(nil), f.Positions...)
		col := append([]float32(nil), f.BaseColors...)

		var rb field.RenderBuffers
		d.Update(f, 3.3, &field.Bands{Bass: 0.8, Mid: 0.2, High: 0.9}, p, &rb)

		for i := range pos {
			if pos[i] != f.Positions[i] || col[i] != f.BaseColors[i] {
				t.Fatalf("%s: field mutated at %d", d.ID, i)
			}
		}
	}
}

func TestStateAbsentBands(t *testing.T) {
	d, _ := NewRegistry().Get("brainboost")
	p := params(d.ID, 1, "", 1)
	p.Speed = 2

	fs := d.State(10, nil, p)
	if fs.Bass != 1 || fs.Mid != 1 || fs.High != 0 {
		t.Errorf("absent bands: %+v", fs)
	}
	if math.Abs(fs.Time-10*2*0.4) > 1e-12 {
		t.Errorf("time = %v, want 8", fs.Time)
	}

	fs = d.State(0, &field.Bands{Bass: 1, Mid: 0.5, High: 2}, p)
	if math.Abs(fs.Bass-1.7) > 1e-12 || math.Abs(fs.Mid-1.3) > 1e-12 || math.Abs(fs.High-1.2) > 1e-12 {
		t.Errorf("scaled bands: %+v", fs)
	}

	p.AudioReactivity = 0
	fs = d.State(0, &field.Bands{Bass: 1, Mid: 1, High: 1}, p)
	if fs.Bass != 1 || fs.Mid != 1 || fs.High != 0 {
		t.Errorf("zero reactivity: %+v", fs)
	}
}

func TestOrientSpinIsFrameRateIndependent(t *testing.T) {
	d, _ := NewRegistry().Get("mentalfocus")
	fs := FrameState{Bass: 1, Mid: 1}

	coarse := field.Identity()
	d.Variant.Orient(&coarse, fs, 2) // one 30 fps frame

	fine := field.Identity()
	d.Variant.Orient(&fine, fs, 1)
	d.Variant.Orient(&fine, fs, 1)

	if math.Abs(coarse.RotY-fine.RotY) > 1e-12 || math.Abs(coarse.RotX-fine.RotX) > 1e-12 {
		t.Errorf("coarse %+v fine %+v", coarse, fine)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		want string
	}{
		{"mentalfocus", "mentalfocus"},
		{"MentalFocus", "mentalfocus"},
		{"ocean-surface", "ocean"},
		{"oceanwaves", "ocean"},
		{" zen-focus ", "zenfocus"},
		{"moonlight-particles", "moonlight"},
	}
	for _, tt := range tests {
		d, err := reg.Get(tt.name)
		if err != nil {
			t.Errorf("Get(%q): %v", tt.name, err)
			continue
		}
		if d.ID != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.name, d.ID, tt.want)
		}
	}

	if _, err := reg.Get("vaporwave"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("unknown theme error = %v", err)
	}
	if _, err := reg.Resolve("vaporwave", "electric"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("Resolve unknown theme error = %v", err)
	}
	p, err := reg.Resolve("mentalfocus", "bogus")
	if err != nil || p.Key != "electric" {
		t.Errorf("Resolve fallback = %q, %v", p.Key, err)
	}

	if ids := reg.IDs(); len(ids) != 6 {
		t.Errorf("IDs = %v", ids)
	}
}

func TestGroupAndHeadroomRanges(t *testing.T) {
	for _, d := range NewRegistry().All() {
		if d.Groups < 12 || d.Groups > 20 {
			t.Errorf("%s: %d groups", d.ID, d.Groups)
		}
		if d.Headroom < 1 || d.Headroom > 1.8 {
			t.Errorf("%s: headroom %v", d.ID, d.Headroom)
		}
	}
}
