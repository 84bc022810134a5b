// Package field holds the particle field data model shared by every theme:
// visual parameters, audio bands, the immutable base field and per-frame render buffers.
package field

import (
	"math"
)

// MinDensity replaces a requested density at or below zero.
const MinDensity = 0.01

// VisualParams are the user-facing knobs that shape generation and animation.
type VisualParams struct {
	Theme           string
	Speed           float64 // > 0, default 1
	Density         float64 // (0,1], fraction of the theme's particle budget
	AudioReactivity float64 // [0,1]
	ColorPreset     string  // empty or unknown = theme default
	Seed            int64   // 0 = time-based
}

// DefaultParams returns the neutral parameter set.
func DefaultParams() VisualParams {
	return VisualParams{
		Speed:           1,
		Density:         1,
		AudioReactivity: 1,
	}
}

// Normalized returns a copy with density, speed and reactivity forced into range.
func (p VisualParams) Normalized() VisualParams {
	p.Density = ClampDensity(p.Density)
	if math.IsNaN(p.Speed) || p.Speed <= 0 {
		p.Speed = 1
	}
	p.AudioReactivity = clamp01(p.AudioReactivity)
	return p
}

// NeedsRegen reports whether moving from p to q changes the base field.
func (p VisualParams) NeedsRegen(q VisualParams) bool {
	return p.Theme != q.Theme ||
		ClampDensity(p.Density) != ClampDensity(q.Density) ||
		p.ColorPreset != q.ColorPreset ||
		p.Seed != q.Seed
}

// ClampDensity forces a requested density into (0, 1]. Non-positive values
// become MinDensity; valid densities pass through unchanged. NaN is treated
// as full density.
func ClampDensity(d float64) float64 {
	switch {
	case math.IsNaN(d):
		return 1
	case d <= 0:
		return MinDensity
	case d > 1:
		return 1
	}
	return d
}

// ParticleCount derives the number of particles for a theme budget.
// The result is floor(maxCount*density) and never less than groups.
func ParticleCount(maxCount int, density float64, groups int) int {
	n := int(math.Floor(float64(maxCount) * ClampDensity(density)))
	if n < groups {
		n = groups
	}
	if n < 1 {
		n = 1
	}
	return n
}

// GroupSizes splits count across groups. Every group receives at least one
// particle when count >= groups; the remainder goes to the leading groups.
func GroupSizes(count, groups int) []int {
	if groups < 1 {
		groups = 1
	}
	sizes := make([]int, groups)
	per := count / groups
	rem := count % groups
	for i := range sizes {
		sizes[i] = per
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// Progress returns the normalized position of index j within a group of n.
func Progress(j, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(j) / float64(n-1)
}

// Bands is one frame's audio energy. A nil *Bands means no audio.
type Bands struct {
	Bass float64
	Mid  float64
	High float64
}

// Clamped returns the bands forced into [0,1].
func (b Bands) Clamped() Bands {
	return Bands{Bass: clamp01(b.Bass), Mid: clamp01(b.Mid), High: clamp01(b.High)}
}

// Field is an immutable base particle field. Positions and BaseColors are
// parallel xyz / rgb triples, both of length 3*Count.
type Field struct {
	Theme      string
	Preset     string
	Density    float64
	Seed       int64
	Count      int
	Groups     int
	Positions  []float32
	BaseColors []float32
}

// New allocates a field for count particles.
func New(theme, preset string, count, groups int) *Field {
	return &Field{
		Theme:      theme,
		Preset:     preset,
		Count:      count,
		Groups:     groups,
		Positions:  make([]float32, 3*count),
		BaseColors: make([]float32, 3*count),
	}
}

// Valid reports whether the buffer lengths match the particle count.
func (f *Field) Valid() bool {
	return f != nil && f.Count > 0 &&
		len(f.Positions) == 3*f.Count && len(f.BaseColors) == 3*f.Count
}

// SetPosition writes the base position of particle i.
func (f *Field) SetPosition(i int, x, y, z float64) {
	f.Positions[3*i] = float32(x)
	f.Positions[3*i+1] = float32(y)
	f.Positions[3*i+2] = float32(z)
}

// SetColor writes the base color of particle i.
func (f *Field) SetColor(i int, r, g, b float64) {
	f.BaseColors[3*i] = float32(r)
	f.BaseColors[3*i+1] = float32(g)
	f.BaseColors[3*i+2] = float32(b)
}

// Transform is the aggregate rotation (radians) and uniform scale applied to a frame.
type Transform struct {
	RotX, RotY, RotZ float64
	Scale            float64
}

// Identity returns the neutral transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// RenderBuffers are one frame's output. They are owned by the render loop
// and reused between ticks.
type RenderBuffers struct {
	Count     int
	Positions []float32
	Colors    []float32
	Transform Transform
}

// Ensure resizes the buffers for count particles, reusing storage when possible.
func (rb *RenderBuffers) Ensure(count int) {
	n := 3 * count
	if cap(rb.Positions) < n {
		rb.Positions = make([]float32, n)
		rb.Colors = make([]float32, n)
	}
	rb.Positions = rb.Positions[:n]
	rb.Colors = rb.Colors[:n]
	rb.Count = count
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
