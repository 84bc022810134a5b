package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const oceanHeadroom = 1.0

// Category keys along the ocean ramp. Jitter blends toward the neighbor
// anchor rather than adding noise so colors stay inside the preset.
const (
	oceanDeep     = 0.0
	oceanMidnight = 0.25
	oceanTeal     = 0.5
	oceanSilver   = 0.75
	oceanShimmer  = 1.0
	oceanJitter   = 0.06
)

var oceanLayout = palette.Layout{
	{Pos: oceanDeep, Anchor: "deepOcean"},
	{Pos: oceanMidnight, Anchor: "midnightBlue"},
	{Pos: oceanTeal, Anchor: "twilightTeal"},
	{Pos: oceanSilver, Anchor: "moonlitSilver"},
	{Pos: oceanShimmer, Anchor: "shimmerWhite"},
}

func oceanPreset(key, name string, deep, midnight, teal, silver, shimmer [3]float64) palette.Preset {
	a := func(n string, c [3]float64) palette.Anchor {
		return palette.Anchor{Name: n, Color: palette.RGB(c[0], c[1], c[2])}
	}
	return palette.Preset{Key: key, Name: name, Anchors: []palette.Anchor{
		a("deepOcean", deep), a("midnightBlue", midnight), a("twilightTeal", teal),
		a("moonlitSilver", silver), a("shimmerWhite", shimmer),
	}}
}

var oceanPresets = palette.NewTable("midnight",
	oceanPreset("midnight", "Midnight Ocean",
		[3]float64{0.05, 0.15, 0.25}, [3]float64{0.15, 0.25, 0.4}, [3]float64{0.25, 0.4, 0.5},
		[3]float64{0.7, 0.75, 0.85}, [3]float64{0.9, 0.95, 1.0}),
	oceanPreset("tropical", "Tropical Paradise",
		[3]float64{0.0, 0.25, 0.35}, [3]float64{0.0, 0.45, 0.55}, [3]float64{0.1, 0.65, 0.7},
		[3]float64{0.4, 0.85, 0.85}, [3]float64{0.7, 1.0, 1.0}),
	oceanPreset("sunset", "Sunset Glow",
		[3]float64{0.2, 0.15, 0.3}, [3]float64{0.35, 0.2, 0.45}, [3]float64{0.6, 0.3, 0.5},
		[3]float64{0.95, 0.6, 0.5}, [3]float64{1.0, 0.8, 0.6}),
	oceanPreset("arctic", "Arctic Ice",
		[3]float64{0.1, 0.2, 0.3}, [3]float64{0.2, 0.35, 0.45}, [3]float64{0.4, 0.55, 0.65},
		[3]float64{0.75, 0.85, 0.95}, [3]float64{0.95, 0.98, 1.0}),
	oceanPreset("emerald", "Emerald Deep",
		[3]float64{0.0, 0.2, 0.15}, [3]float64{0.0, 0.35, 0.3}, [3]float64{0.1, 0.55, 0.45},
		[3]float64{0.4, 0.8, 0.7}, [3]float64{0.7, 1.0, 0.9}),
)

// ocean is a stack of wave-height sheets with a moonlit strip that sparkles
// on high-band energy.
type ocean struct{}

func inMoonPath(x, z float64) bool {
	return math.Abs(x) < 8 && z > -10 && z < 20
}

func oceanHeight(x, z float64) float64 {
	w1 := math.Sin(x*0.2) * 2.5
	w2 := math.Cos(z*0.18) * 2.0
	ripple := math.Sin(x*0.35+z*0.3) * 1.2
	cx := math.Floor(x/5) * 5
	cz := math.Floor(z/5) * 5
	cluster := math.Sin(cx*0.15) * math.Cos(cz*0.12) * 1.5
	return w1 + w2 + ripple + cluster
}

func (ocean) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := oceanLayout.Bind(p)
	i := 0
	for layer, n := range field.GroupSizes(f.Count, f.Groups) {
		for j := 0; j < n; j++ {
			x := signed(rng) * 60
			z := signed(rng) * 50
			f.SetPosition(i, x, oceanHeight(x, z)-float64(layer)*1.2, z)

			dist := math.Sqrt(x*x+z*z) / 40
			sparkle := rng.Float64()
			var key float64
			switch {
			case inMoonPath(x, z) && sparkle > 0.85:
				key = oceanShimmer
			case inMoonPath(x, z) && sparkle > 0.6:
				key = oceanSilver
			case layer < 5 && dist < 0.5:
				key = oceanTeal
			case layer < 5:
				key = oceanMidnight
			case dist < 0.6:
				key = oceanMidnight
			default:
				key = oceanDeep
			}
			c := ramp.At(key + signed(rng)*oceanJitter)
			f.SetColor(i, c.R, c.G, c.B)
			i++
		}
	}
}

func (ocean) Brightness(x, _, z float64, fs FrameState) float64 {
	if !inMoonPath(x, z) {
		return 1
	}
	sparkle := math.Sin(fs.Time*2+x*0.5+z*0.3)*0.5 + 0.5
	return 1 + sparkle*fs.High*0.8
}

func (o ocean) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])

		w1 := math.Sin(x*0.1+t*0.3) * math.Cos(z*0.08+t*0.25)
		w2 := math.Cos(x*0.15-t*0.4) * math.Sin(z*0.12+t*0.35)
		w3 := math.Sin(x*0.08+z*0.1+t*0.5) * 0.5
		wave := (w1 + w2 + w3) * 0.8 * fs.Bass
		drift := math.Sin(t*0.15+z*0.05) * 0.3 * fs.Mid

		dst[i3] = float32(x + drift)
		dst[i3+1] = float32(y + wave)
		dst[i3+2] = float32(z)

		shade(rb.Colors, f.BaseColors, i3, o.Brightness(x, y, z, fs), oceanHeadroom)
	}
}

func (ocean) Orient(tr *field.Transform, fs FrameState, _ float64) {
	tr.RotX = math.Sin(fs.Time*0.2) * 0.02
	tr.RotZ = math.Cos(fs.Time*0.18) * 0.015
	tr.Scale = 1 + math.Sin(fs.Time*0.25)*0.008*fs.Bass
}
