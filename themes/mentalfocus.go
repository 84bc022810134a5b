package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const mentalFocusHeadroom = 1.5

// Planar distance bands: flat core, mid and edge, then outer fading to deep.
var mentalFocusLayout = palette.Layout{
	{Pos: 0, Anchor: "core"}, {Pos: 0.2, Anchor: "core"},
	{Pos: 0.2, Anchor: "mid"}, {Pos: 0.5, Anchor: "mid"},
	{Pos: 0.5, Anchor: "edge"}, {Pos: 0.8, Anchor: "edge"},
	{Pos: 0.8, Anchor: "outer"}, {Pos: 1, Anchor: "deep"},
}

var mentalFocusPresets = palette.NewTable("electric",
	palette.Preset{Key: "electric", Name: "Electric Blue", Anchors: []palette.Anchor{
		{Name: "core", Color: palette.RGB(0.95, 0.98, 1.0)},
		{Name: "mid", Color: palette.RGB(0.0, 0.9, 1.0)},
		{Name: "edge", Color: palette.RGB(0.0, 0.5, 1.0)},
		{Name: "outer", Color: palette.RGB(0.3, 0.35, 0.4)},
		{Name: "deep", Color: palette.RGB(0.05, 0.08, 0.15)},
	}},
	palette.Preset{Key: "softPink", Name: "Soft Pink", Anchors: []palette.Anchor{
		{Name: "core", Color: palette.RGB(1.0, 0.95, 0.98)},
		{Name: "mid", Color: palette.RGB(0.95, 0.7, 0.85)},
		{Name: "edge", Color: palette.RGB(0.85, 0.5, 0.7)},
		{Name: "outer", Color: palette.RGB(0.5, 0.35, 0.4)},
		{Name: "deep", Color: palette.RGB(0.15, 0.08, 0.12)},
	}},
	palette.Preset{Key: "softGreen", Name: "Soft Green", Anchors: []palette.Anchor{
		{Name: "core", Color: palette.RGB(0.95, 1.0, 0.98)},
		{Name: "mid", Color: palette.RGB(0.7, 0.95, 0.85)},
		{Name: "edge", Color: palette.RGB(0.5, 0.85, 0.7)},
		{Name: "outer", Color: palette.RGB(0.35, 0.5, 0.4)},
		{Name: "deep", Color: palette.RGB(0.08, 0.15, 0.12)},
	}},
	palette.Preset{Key: "softYellow", Name: "Soft Yellow", Anchors: []palette.Anchor{
		{Name: "core", Color: palette.RGB(1.0, 0.98, 0.95)},
		{Name: "mid", Color: palette.RGB(0.95, 0.9, 0.7)},
		{Name: "edge", Color: palette.RGB(0.85, 0.75, 0.5)},
		{Name: "outer", Color: palette.RGB(0.5, 0.45, 0.35)},
		{Name: "deep", Color: palette.RGB(0.15, 0.12, 0.08)},
	}},
)

// mentalFocus scatters thin rectangular planes at random orientations and
// shatters them with fast crossing waves.
type mentalFocus struct{}

func (mentalFocus) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := mentalFocusLayout.Bind(p)
	i := 0
	for _, n := range field.GroupSizes(f.Count, f.Groups) {
		angleX := signed(rng) * math.Pi
		angleY := signed(rng) * math.Pi
		cx := signed(rng) * 40
		cy := signed(rng) * 30
		cz := signed(rng) * 40
		sx, cxa := math.Sincos(angleX)
		sy, cya := math.Sincos(angleY)

		for j := 0; j < n; j++ {
			u := signed(rng) * 15
			v := signed(rng) * 8
			w := rng.Float64() * 0.3

			rx := u*cya - w*sy
			rz := u*sy + w*cya
			ry := v*cxa - rz*sx
			fz := v*sx + rz*cxa
			f.SetPosition(i, cx+rx, cy+ry, cz+fz)

			c := ramp.At(math.Sqrt(u*u+v*v) / 10)
			f.SetColor(i, c.R, c.G, c.B)
			i++
		}
	}
}

func (mentalFocus) Brightness(x, y, z float64, fs FrameState) float64 {
	dist := math.Sqrt(x*x + y*y + z*z)
	return mentalFocusGlow(dist, fs)
}

func mentalFocusGlow(dist float64, fs FrameState) float64 {
	intensity := math.Sin(fs.Time*5+dist*0.15)*0.5 + 0.5
	return 0.8 + intensity*0.5 + fs.High*0.7
}

func (mentalFocus) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])

		cut1 := math.Sin(x*0.15+t*2.5) * math.Cos(z*0.12+t*2.0)
		cut2 := math.Cos(y*0.1+t*2.8) * math.Sin(x*0.18-t*2.3)
		cut3 := math.Sin(z*0.2-t*2.0) * math.Cos(y*0.14+t*2.6)
		sharp := (cut1 + cut2 + cut3) * 2.5 * fs.Bass

		dist := math.Sqrt(x*x + y*y + z*z)
		explosive := math.Sin(t*3-dist*0.1) * 3 * fs.High

		angle := math.Atan2(z, x)
		stream := math.Sin(angle*5+t*4) * 1.5 * fs.Mid
		sa, ca := math.Sincos(angle)

		dst[i3] = float32(x + sharp + ca*stream + explosive*0.3)
		dst[i3+1] = float32(y + cut2*3*fs.Bass + explosive*0.5)
		dst[i3+2] = float32(z + sharp + sa*stream + explosive*0.3)

		shade(rb.Colors, f.BaseColors, i3, mentalFocusGlow(dist, fs), mentalFocusHeadroom)
	}
}

func (mentalFocus) Orient(tr *field.Transform, fs FrameState, step float64) {
	tr.RotY += 0.002 * step * fs.Mid
	tr.RotX += 0.0015 * step * fs.Bass
	tr.RotZ = math.Sin(fs.Time*1.5) * 0.1
	tr.Scale = 1 + math.Sin(fs.Time*2)*0.08*fs.Bass
}
