package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const moonlightHeadroom = 1.0

// Seventy percent of particles are graded silver, the rest a pale blue.
var moonlightLayout = palette.Layout{
	{Pos: 0, Anchor: "dim"},
	{Pos: 0.7, Anchor: "bright"},
	{Pos: 0.7, Anchor: "pale"},
	{Pos: 1, Anchor: "ice"},
}

func moonPreset(key, name string, dim, bright, pale, ice [3]float64) palette.Preset {
	a := func(n string, c [3]float64) palette.Anchor {
		return palette.Anchor{Name: n, Color: palette.RGB(c[0], c[1], c[2])}
	}
	return palette.Preset{Key: key, Name: name, Anchors: []palette.Anchor{
		a("dim", dim), a("bright", bright), a("pale", pale), a("ice", ice),
	}}
}

var moonlightPresets = palette.NewTable("silver",
	moonPreset("silver", "Silver Moon",
		[3]float64{0.6, 0.6, 0.66}, [3]float64{1.0, 1.0, 1.0}, [3]float64{0.7, 0.8, 1.0}, [3]float64{1.0, 1.0, 1.0}),
	moonPreset("electric", "Electric Blue",
		[3]float64{0.0, 0.35, 0.6}, [3]float64{0.3, 0.8, 1.0}, [3]float64{0.6, 0.9, 1.0}, [3]float64{0.95, 0.98, 1.0}),
	moonPreset("softPink", "Soft Pink",
		[3]float64{0.6, 0.45, 0.55}, [3]float64{1.0, 0.85, 0.92}, [3]float64{0.95, 0.7, 0.85}, [3]float64{1.0, 0.95, 0.98}),
	moonPreset("softGreen", "Soft Green",
		[3]float64{0.45, 0.6, 0.5}, [3]float64{0.85, 1.0, 0.92}, [3]float64{0.7, 0.95, 0.85}, [3]float64{0.95, 1.0, 0.98}),
	moonPreset("softYellow", "Soft Yellow",
		[3]float64{0.6, 0.55, 0.42}, [3]float64{1.0, 0.95, 0.85}, [3]float64{0.95, 0.9, 0.7}, [3]float64{1.0, 0.98, 0.95}),
)

// moonlight is a hollow sphere of dust whose radius ripples with bass.
type moonlight struct{}

func (moonlight) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := moonlightLayout.Bind(p)
	i := 0
	for shell, n := range field.GroupSizes(f.Count, f.Groups) {
		for j := 0; j < n; j++ {
			radius := 15 + (float64(shell)+rng.Float64())/float64(f.Groups)*10
			theta := rng.Float64() * 2 * math.Pi
			phi := math.Acos(rng.Float64()*2 - 1)

			sp, cp := math.Sincos(phi)
			st, ct := math.Sincos(theta)
			f.SetPosition(i, radius*sp*ct, radius*sp*st, radius*cp)

			c := ramp.At(rng.Float64())
			f.SetColor(i, c.R, c.G, c.B)
			i++
		}
	}
}

func (moonlight) Brightness(x, y, z float64, fs FrameState) float64 {
	return moonlightGlow(math.Sqrt(x*x+y*y+z*z), fs)
}

func moonlightGlow(radius float64, fs FrameState) float64 {
	return 0.85 + (math.Sin(fs.Time*0.8+radius*0.1)*0.5+0.5)*0.15 + fs.High*0.25
}

// Frame displaces every particle radially from its base position.
func (moonlight) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])
		radius := math.Sqrt(x*x + y*y + z*z)

		w1 := math.Sin(x*0.3+t) * math.Cos(y*0.2+t*0.7)
		w2 := math.Cos(z*0.25+t*1.3) * math.Sin(y*0.15-t*0.5)
		distortion := (w1 + w2) * 0.5 * fs.Bass

		k := 1.0
		if radius > 0 {
			k = (radius + distortion) / radius
		}
		dst[i3] = float32(x * k)
		dst[i3+1] = float32(y * k)
		dst[i3+2] = float32(z * k)

		shade(rb.Colors, f.BaseColors, i3, moonlightGlow(radius, fs), moonlightHeadroom)
	}
}

func (moonlight) Orient(tr *field.Transform, fs FrameState, step float64) {
	tr.RotY += 0.0005 * step * fs.Mid
	tr.RotX = math.Sin(fs.Time*0.2) * 0.1
	tr.Scale = 1 + math.Sin(fs.Time*0.5)*0.02*fs.Bass + fs.High*0.05
}
