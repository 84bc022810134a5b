package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const creativeFlowHeadroom = 1.2

var creativeFlowLayout = palette.Layout{
	{Pos: 0, Anchor: "purple"}, {Pos: 0.2, Anchor: "purple"},
	{Pos: 0.4, Anchor: "pink"},
	{Pos: 0.6, Anchor: "yellow"},
	{Pos: 0.8, Anchor: "green"},
	{Pos: 1, Anchor: "blue"},
}

var creativeFlowPresets = palette.NewTable("playful",
	palette.Preset{Key: "playful", Name: "Playful Rainbow", Anchors: []palette.Anchor{
		{Name: "purple", Color: palette.RGB(0.6, 0.4, 0.8)},
		{Name: "pink", Color: palette.RGB(0.95, 0.5, 0.7)},
		{Name: "yellow", Color: palette.RGB(1.0, 0.85, 0.3)},
		{Name: "green", Color: palette.RGB(0.4, 0.85, 0.6)},
		{Name: "blue", Color: palette.RGB(0.4, 0.75, 0.95)},
	}},
	palette.Preset{Key: "electric", Name: "Electric Blue", Anchors: []palette.Anchor{
		{Name: "purple", Color: palette.RGB(0.1, 0.15, 0.4)},
		{Name: "pink", Color: palette.RGB(0.0, 0.5, 1.0)},
		{Name: "yellow", Color: palette.RGB(0.0, 0.9, 1.0)},
		{Name: "green", Color: palette.RGB(0.6, 0.85, 1.0)},
		{Name: "blue", Color: palette.RGB(0.95, 0.98, 1.0)},
	}},
	palette.Preset{Key: "softPink", Name: "Soft Pink", Anchors: []palette.Anchor{
		{Name: "purple", Color: palette.RGB(0.6, 0.4, 0.55)},
		{Name: "pink", Color: palette.RGB(0.95, 0.7, 0.85)},
		{Name: "yellow", Color: palette.RGB(1.0, 0.85, 0.9)},
		{Name: "green", Color: palette.RGB(0.85, 0.5, 0.7)},
		{Name: "blue", Color: palette.RGB(1.0, 0.95, 0.98)},
	}},
	palette.Preset{Key: "softGreen", Name: "Soft Green", Anchors: []palette.Anchor{
		{Name: "purple", Color: palette.RGB(0.35, 0.55, 0.45)},
		{Name: "pink", Color: palette.RGB(0.7, 0.95, 0.85)},
		{Name: "yellow", Color: palette.RGB(0.85, 0.95, 0.7)},
		{Name: "green", Color: palette.RGB(0.5, 0.85, 0.7)},
		{Name: "blue", Color: palette.RGB(0.95, 1.0, 0.98)},
	}},
	palette.Preset{Key: "softYellow", Name: "Soft Yellow", Anchors: []palette.Anchor{
		{Name: "purple", Color: palette.RGB(0.55, 0.45, 0.35)},
		{Name: "pink", Color: palette.RGB(0.95, 0.9, 0.7)},
		{Name: "yellow", Color: palette.RGB(1.0, 0.95, 0.7)},
		{Name: "green", Color: palette.RGB(0.85, 0.75, 0.5)},
		{Name: "blue", Color: palette.RGB(1.0, 0.98, 0.95)},
	}},
)

// creativeFlow winds vertical ribbons through three interfering sine paths,
// each stream offset along the color cycle.
type creativeFlow struct{}

func (creativeFlow) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := creativeFlowLayout.Bind(p)
	i := 0
	for g, n := range field.GroupSizes(f.Count, f.Groups) {
		phase := float64(g) / float64(f.Groups) * 2 * math.Pi
		amp := 12 + rng.Float64()*8
		freq := 0.8 + rng.Float64()*0.6
		twist := rng.Float64() * math.Pi

		for j := 0; j < n; j++ {
			t := field.Progress(j, n)
			w1 := math.Sin(t*math.Pi*freq*3 + phase)
			w2 := math.Cos(t*math.Pi*freq*2 + twist)
			w3 := math.Sin(t*math.Pi*freq*4 + phase*0.5)

			width := 2 + math.Sin(t*math.Pi*2)
			offU := signed(rng) * width
			offV := signed(rng) * 0.5

			f.SetPosition(i, w1*amp+offU, (t-0.5)*40+w2*8+offV, w3*amp+offU*0.7)

			c := ramp.At(wrap01(t + float64(g)*0.2))
			f.SetColor(i, c.R, c.G, c.B)
			i++
		}
	}
}

func (creativeFlow) Brightness(x, _, z float64, fs FrameState) float64 {
	return creativeFlowGlow(math.Sqrt(x*x+z*z), fs)
}

func creativeFlowGlow(dist float64, fs FrameState) float64 {
	return 0.9 + (math.Sin(fs.Time*1.8+dist*0.08)*0.5+0.5)*0.4 + fs.High*0.3
}

func (creativeFlow) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	base, out := f.BaseColors, rb.Colors
	tint := math.Sin(t) * 0.3
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])

		flow1 := math.Sin(x*0.1+t*1.2) * math.Cos(z*0.08+t*1.0)
		flow2 := math.Cos(y*0.06+t*1.1) * math.Sin(x*0.09-t*0.9)
		flow3 := math.Sin(z*0.11-t*1.0) * math.Cos(y*0.07+t*1.15)
		creative := (flow1 + flow2 + flow3) * 2 * fs.Bass

		angle := math.Atan2(z, x)
		dist := math.Sqrt(x*x + z*z)
		swirl := math.Sin(angle*3+t*1.3-dist*0.06) * 1.5 * fs.Mid
		bounce := math.Sin(t*1.5+dist*0.07) * 1.2
		sa, ca := math.Sincos(angle)

		dst[i3] = float32(x + creative + ca*swirl)
		dst[i3+1] = float32(y + bounce*fs.Bass + flow2*2)
		dst[i3+2] = float32(z + creative + sa*swirl)

		// Hue drift is zero at t=0 so the first frame is a pure brightness scale.
		shift := tint * math.Cos(dist*0.05)
		b := creativeFlowGlow(dist, fs)
		out[i3] = float32(clampColor((float64(base[i3])+shift*0.2)*b, creativeFlowHeadroom))
		out[i3+1] = float32(clampColor((float64(base[i3+1])-shift*0.1)*b, creativeFlowHeadroom))
		out[i3+2] = float32(clampColor((float64(base[i3+2])+shift*0.15)*b, creativeFlowHeadroom))
	}
}

func (creativeFlow) Orient(tr *field.Transform, fs FrameState, step float64) {
	tr.RotY += 0.0008 * step * fs.Mid
	tr.RotX = math.Sin(fs.Time*0.6) * 0.08
	tr.RotZ = math.Cos(fs.Time*0.5) * 0.05
	tr.Scale = 1 + math.Sin(fs.Time*0.9)*0.04*fs.Bass
}
