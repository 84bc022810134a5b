// Package palette resolves named color presets and samples them as
// piecewise-linear gradients.
package palette

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Anchor is one named color in a preset.
type Anchor struct {
	Name  string
	Color colorful.Color
}

// Preset is an ordered set of anchor colors. Anchor names are shared by all
// presets of a theme so a theme's layout can bind to any of them.
type Preset struct {
	Key     string
	Name    string
	Anchors []Anchor
}

// RGB builds a color from float channels.
func RGB(r, g, b float64) colorful.Color {
	return colorful.Color{R: r, G: g, B: b}
}

// Anchor returns the named anchor color.
func (p Preset) Anchor(name string) (colorful.Color, bool) {
	for _, a := range p.Anchors {
		if a.Name == name {
			return a.Color, true
		}
	}
	return colorful.Color{}, false
}

// Bounds returns the per-channel minimum and maximum over all anchors.
// Any color interpolated between anchors lies inside these bounds.
func (p Preset) Bounds() (lo, hi colorful.Color) {
	lo = RGB(math.Inf(1), math.Inf(1), math.Inf(1))
	hi = RGB(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, a := range p.Anchors {
		c := a.Color
		lo.R, hi.R = math.Min(lo.R, c.R), math.Max(hi.R, c.R)
		lo.G, hi.G = math.Min(lo.G, c.G), math.Max(hi.G, c.G)
		lo.B, hi.B = math.Min(lo.B, c.B), math.Max(hi.B, c.B)
	}
	return lo, hi
}

// Swatch returns the anchors as hex strings, clamped to displayable range.
func (p Preset) Swatch() []string {
	out := make([]string, len(p.Anchors))
	for i, a := range p.Anchors {
		out[i] = a.Color.Clamped().Hex()
	}
	return out
}

// Key places an anchor at a position along a gradient.
type Key struct {
	Pos    float64
	Anchor string
}

// Layout is a theme's fixed arrangement of anchor positions. Two keys at the
// same position produce a hard step.
type Layout []Key

// Bind resolves a layout against a preset. It panics if the preset lacks an
// anchor the layout names; preset tables are static so this is a programming error.
func (l Layout) Bind(p Preset) Ramp {
	r := make(Ramp, len(l))
	for i, k := range l {
		c, ok := p.Anchor(k.Anchor)
		if !ok {
			panic(fmt.Sprintf("palette: preset %q has no anchor %q", p.Key, k.Anchor))
		}
		r[i] = stop{pos: k.Pos, color: c}
	}
	return r
}

type stop struct {
	pos   float64
	color colorful.Color
}

// Ramp is a bound layout ready for sampling.
type Ramp []stop

// At samples the ramp at t. Values outside the first and last key clamp to
// the end colors.
func (r Ramp) At(t float64) colorful.Color {
	n := len(r)
	if n == 0 {
		return colorful.Color{}
	}
	if t <= r[0].pos || n == 1 {
		return r[0].color
	}
	if t >= r[n-1].pos {
		return r[n-1].color
	}
	for i := 0; i < n-1; i++ {
		a, b := r[i], r[i+1]
		if t >= a.pos && t < b.pos {
			return a.color.BlendRgb(b.color, (t-a.pos)/(b.pos-a.pos))
		}
	}
	return r[n-1].color
}
