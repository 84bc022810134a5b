// Package themes implements the particle themes. Each theme is a Variant
// (base field construction plus a per-frame kernel) wrapped in a Descriptor
// carrying its budget, audio weights, color headroom and preset table.
package themes

import (
	"math"
	"math/rand"
	"time"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

// Weights scale the three audio bands for a theme.
type Weights struct {
	Bass, Mid, High float64
}

// FrameState is everything a kernel reads for one frame. It is computed once
// at tick start.
type FrameState struct {
	Time float64 // elapsed * speed * theme time scale

	// Audio scale factors. With no audio Bass and Mid are 1 and High is 0.
	Bass float64
	Mid  float64
	High float64
}

// Variant is the per-theme algorithm pair.
type Variant interface {
	// Build fills f (already sized) from the bound preset.
	Build(f *field.Field, p palette.Preset, rng *rand.Rand)
	// Frame writes particles [lo,hi) of rb from f. It must not touch f.
	Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState)
	// Brightness is the color multiplier applied to a particle at base position (x,y,z).
	Brightness(x, y, z float64, fs FrameState) float64
	// Orient advances the aggregate transform. step is speed-scaled 1/60 s frames elapsed.
	Orient(tr *field.Transform, fs FrameState, step float64)
}

// Descriptor describes one registered theme.
type Descriptor struct {
	ID          string
	Name        string
	Description string

	MaxParticles int
	Groups       int
	TimeScale    float64
	Weights      Weights

	// Headroom caps every output color channel.
	Headroom float64
	// DisplacementBound is the largest per-axis offset from the base position
	// the kernel can produce with all bands at 1 and full reactivity.
	DisplacementBound float64

	PointSize float64
	Opacity   float64

	Presets *palette.Table
	Variant Variant
}

// DefaultPreset returns the key used when no valid preset is requested.
func (d *Descriptor) DefaultPreset() string {
	return d.Presets.DefaultKey()
}

// ResolvePreset maps a requested key onto the theme's table, falling back to the default.
func (d *Descriptor) ResolvePreset(key string) (palette.Preset, bool) {
	return d.Presets.Resolve(key)
}

// Count returns the particle count for a density.
func (d *Descriptor) Count(density float64) int {
	return field.ParticleCount(d.MaxParticles, density, d.Groups)
}

// Generate builds a new base field. Density is clamped and the preset
// resolved before anything is allocated. A zero seed picks a time-based one.
func (d *Descriptor) Generate(params field.VisualParams) *field.Field {
	p := params.Normalized()
	preset, _ := d.Presets.Resolve(p.ColorPreset)

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f := field.New(d.ID, preset.Key, d.Count(p.Density), d.Groups)
	f.Density = p.Density
	f.Seed = seed
	d.Variant.Build(f, preset, rand.New(rand.NewSource(seed)))
	return f
}

// State derives the frame state for an elapsed time and optional bands.
func (d *Descriptor) State(elapsed float64, bands *field.Bands, params field.VisualParams) FrameState {
	p := params.Normalized()
	fs := FrameState{
		Time: elapsed * p.Speed * d.TimeScale,
		Bass: 1,
		Mid:  1,
	}
	if bands != nil {
		b := bands.Clamped()
		r := p.AudioReactivity
		fs.Bass = 1 + b.Bass*r*d.Weights.Bass
		fs.Mid = 1 + b.Mid*r*d.Weights.Mid
		fs.High = b.High * r * d.Weights.High
	}
	return fs
}

// Update computes a whole frame on the calling goroutine. The transform is
// integrated from rest over the full elapsed time; the engine integrates
// incrementally instead.
func (d *Descriptor) Update(f *field.Field, elapsed float64, bands *field.Bands, params field.VisualParams, rb *field.RenderBuffers) {
	fs := d.State(elapsed, bands, params)
	rb.Ensure(f.Count)
	d.Variant.Frame(f, rb, 0, f.Count, fs)

	tr := field.Identity()
	d.Variant.Orient(&tr, fs, params.Normalized().Speed*elapsed*60)
	rb.Transform = tr
}

// shade writes base*b into out for particle offset i3, clamped to [0,limit].
func shade(out, base []float32, i3 int, b, limit float64) {
	out[i3] = float32(clampColor(float64(base[i3])*b, limit))
	out[i3+1] = float32(clampColor(float64(base[i3+1])*b, limit))
	out[i3+2] = float32(clampColor(float64(base[i3+2])*b, limit))
}

func clampColor(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// signed returns a uniform value in [-0.5, 0.5).
func signed(rng *rand.Rand) float64 {
	return rng.Float64() - 0.5
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func wrap01(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		return 0
	}
	return v
}
