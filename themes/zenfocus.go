package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const zenFocusHeadroom = 1.0

var zenFocusLayout = palette.Layout{
	{Pos: 0, Anchor: "deep"}, {Pos: 0.2, Anchor: "deep"},
	{Pos: 0.4, Anchor: "teal"},
	{Pos: 0.6, Anchor: "aqua"},
	{Pos: 0.8, Anchor: "lavender"},
	{Pos: 1, Anchor: "white"},
}

func zenPreset(key, name string, c [5][3]float64) palette.Preset {
	names := [5]string{"deep", "teal", "aqua", "lavender", "white"}
	p := palette.Preset{Key: key, Name: name}
	for i, n := range names {
		p.Anchors = append(p.Anchors, palette.Anchor{Name: n, Color: palette.RGB(c[i][0], c[i][1], c[i][2])})
	}
	return p
}

var zenFocusPresets = palette.NewTable("calm",
	zenPreset("calm", "Calm Waters", [5][3]float64{
		{0.15, 0.2, 0.3}, {0.3, 0.6, 0.65}, {0.5, 0.8, 0.85}, {0.7, 0.75, 0.85}, {0.9, 0.95, 0.98},
	}),
	zenPreset("electric", "Electric Blue", [5][3]float64{
		{0.05, 0.08, 0.15}, {0.0, 0.5, 1.0}, {0.0, 0.9, 1.0}, {0.6, 0.7, 0.95}, {0.95, 0.98, 1.0},
	}),
	zenPreset("softPink", "Soft Pink", [5][3]float64{
		{0.15, 0.08, 0.12}, {0.85, 0.5, 0.7}, {0.95, 0.7, 0.85}, {0.8, 0.7, 0.85}, {1.0, 0.95, 0.98},
	}),
	zenPreset("softGreen", "Soft Green", [5][3]float64{
		{0.08, 0.15, 0.12}, {0.5, 0.85, 0.7}, {0.7, 0.95, 0.85}, {0.75, 0.85, 0.8}, {0.95, 1.0, 0.98},
	}),
	zenPreset("softYellow", "Soft Yellow", [5][3]float64{
		{0.15, 0.12, 0.08}, {0.85, 0.75, 0.5}, {0.95, 0.9, 0.7}, {0.85, 0.8, 0.7}, {1.0, 0.98, 0.95},
	}),
)

// zenFocus coils concentric ribbons into slow spirals that fade toward their edges.
type zenFocus struct{}

func (zenFocus) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := zenFocusLayout.Bind(p)
	i := 0
	for g, n := range field.GroupSizes(f.Count, f.Groups) {
		phase := float64(g) / float64(f.Groups) * 2 * math.Pi
		radius := 15 + float64(g)*1.5

		for j := 0; j < n; j++ {
			t := field.Progress(j, n)
			angle := phase + t*math.Pi*4

			width := 3 * (1 - math.Abs(t-0.5)*0.5)
			offU := signed(rng) * width
			offV := signed(rng) * 0.8

			s, c := math.Sincos(angle)
			f.SetPosition(i, (radius+offU)*c, (t-0.5)*25+offV, (radius+offU)*s)

			col := ramp.At(wrap01(t + float64(g)*0.1))
			fade := 1 - math.Abs(offU)/width
			f.SetColor(i, col.R*fade, col.G*fade, col.B*fade)
			i++
		}
	}
}

func (zenFocus) Brightness(x, _, z float64, fs FrameState) float64 {
	return zenFocusGlow(math.Sqrt(x*x+z*z), fs)
}

func zenFocusGlow(radius float64, fs FrameState) float64 {
	glow := math.Sin(fs.Time*0.4+radius*0.06)*0.5 + 0.5
	return 0.85 + glow*0.25 + fs.High*0.2
}

func (zenFocus) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])

		flow1 := math.Sin(x*0.08+t*0.5) * math.Cos(z*0.06+t*0.4)
		flow2 := math.Cos(y*0.05+t*0.45) * math.Sin(x*0.07-t*0.35)
		flow3 := math.Sin(z*0.09-t*0.4) * math.Cos(y*0.06+t*0.5)
		gentle := (flow1 + flow2 + flow3) * 1.2 * fs.Bass

		angle := math.Atan2(z, x)
		radius := math.Sqrt(x*x + z*z)
		spiral := math.Sin(angle*3+t*0.6-radius*0.05) * 0.8 * fs.Mid
		drift := math.Sin(t*0.3+radius*0.08) * 0.6
		sa, ca := math.Sincos(angle)

		dst[i3] = float32(x + gentle + ca*spiral)
		dst[i3+1] = float32(y + drift*fs.Bass + flow2)
		dst[i3+2] = float32(z + gentle + sa*spiral)

		shade(rb.Colors, f.BaseColors, i3, zenFocusGlow(radius, fs), zenFocusHeadroom)
	}
}

func (zenFocus) Orient(tr *field.Transform, fs FrameState, step float64) {
	tr.RotY += 0.0002 * step * fs.Mid
	tr.RotX = math.Sin(fs.Time*0.2) * 0.03
	tr.Scale = 1 + math.Sin(fs.Time*0.35)*0.015*fs.Bass
}
