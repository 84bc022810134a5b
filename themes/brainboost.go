package themes

import (
	"math"
	"math/rand"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/palette"
)

const brainBoostHeadroom = 1.8

var brainBoostLayout = palette.Layout{
	{Pos: 0, Anchor: "darkEnergy"},
	{Pos: 0.15, Anchor: "electricPurple"},
	{Pos: 0.4, Anchor: "vibrantPink"},
	{Pos: 0.7, Anchor: "energyYellow"},
	{Pos: 1, Anchor: "explosiveWhite"},
}

var brainBoostPresets = palette.NewTable("electric",
	palette.Preset{Key: "electric", Name: "Electric Purple", Anchors: []palette.Anchor{
		{Name: "darkEnergy", Color: palette.RGB(0.1, 0.05, 0.15)},
		{Name: "electricPurple", Color: palette.RGB(0.6, 0.2, 0.9)},
		{Name: "vibrantPink", Color: palette.RGB(1.0, 0.3, 0.7)},
		{Name: "energyYellow", Color: palette.RGB(1.0, 0.9, 0.2)},
		{Name: "explosiveWhite", Color: palette.RGB(1.0, 0.95, 0.85)},
	}},
	palette.Preset{Key: "softPink", Name: "Soft Pink", Anchors: []palette.Anchor{
		{Name: "darkEnergy", Color: palette.RGB(0.15, 0.08, 0.12)},
		{Name: "electricPurple", Color: palette.RGB(0.85, 0.5, 0.7)},
		{Name: "vibrantPink", Color: palette.RGB(0.95, 0.7, 0.85)},
		{Name: "energyYellow", Color: palette.RGB(1.0, 0.9, 0.85)},
		{Name: "explosiveWhite", Color: palette.RGB(1.0, 0.95, 0.98)},
	}},
	palette.Preset{Key: "softGreen", Name: "Soft Green", Anchors: []palette.Anchor{
		{Name: "darkEnergy", Color: palette.RGB(0.08, 0.15, 0.12)},
		{Name: "electricPurple", Color: palette.RGB(0.5, 0.85, 0.7)},
		{Name: "vibrantPink", Color: palette.RGB(0.7, 0.95, 0.85)},
		{Name: "energyYellow", Color: palette.RGB(0.85, 0.95, 0.7)},
		{Name: "explosiveWhite", Color: palette.RGB(0.95, 1.0, 0.98)},
	}},
	palette.Preset{Key: "softYellow", Name: "Soft Yellow", Anchors: []palette.Anchor{
		{Name: "darkEnergy", Color: palette.RGB(0.15, 0.12, 0.08)},
		{Name: "electricPurple", Color: palette.RGB(0.85, 0.75, 0.5)},
		{Name: "vibrantPink", Color: palette.RGB(0.95, 0.9, 0.7)},
		{Name: "energyYellow", Color: palette.RGB(1.0, 0.95, 0.7)},
		{Name: "explosiveWhite", Color: palette.RGB(1.0, 0.98, 0.95)},
	}},
)

// brainBoost draws lightning arcs between random origin/target pairs that
// bulge out mid-arc and brighten at their peak.
type brainBoost struct{}

func (brainBoost) Build(f *field.Field, p palette.Preset, rng *rand.Rand) {
	ramp := brainBoostLayout.Bind(p)
	i := 0
	for _, n := range field.GroupSizes(f.Count, f.Groups) {
		ox, oy, oz := signed(rng)*20, signed(rng)*20, signed(rng)*20
		tx, ty, tz := signed(rng)*50, signed(rng)*40, signed(rng)*50
		strength := 3 + rng.Float64()*5
		freq := 2 + rng.Float64()*3

		for j := 0; j < n; j++ {
			t := field.Progress(j, n)
			arcAngle := t * math.Pi * freq
			energy := math.Sin(t * math.Pi)
			arcRadius := energy * strength

			dx := math.Cos(arcAngle) * arcRadius * (rng.Float64()*0.5 + 0.75)
			dy := math.Sin(arcAngle*1.3) * arcRadius * (rng.Float64()*0.5 + 0.75)
			dz := math.Sin(arcAngle) * arcRadius * (rng.Float64()*0.5 + 0.75)
			f.SetPosition(i, lerp(ox, tx, t)+dx, lerp(oy, ty, t)+dy, lerp(oz, tz, t)+dz)

			c := ramp.At(t)
			k := 0.7 + energy*0.5
			f.SetColor(i, c.R*k, c.G*k, c.B*k)
			i++
		}
	}
}

func (brainBoost) Brightness(x, y, z float64, fs FrameState) float64 {
	return brainBoostGlow(math.Sqrt(x*x+y*y+z*z), fs)
}

func brainBoostGlow(dist float64, fs FrameState) float64 {
	pulse := math.Sin(fs.Time*6+dist*0.18)*0.5 + 0.5
	return 0.9 + pulse*0.6 + fs.High*0.8
}

func (brainBoost) Frame(f *field.Field, rb *field.RenderBuffers, lo, hi int, fs FrameState) {
	t := fs.Time
	src, dst := f.Positions, rb.Positions
	for i := lo; i < hi; i++ {
		i3 := 3 * i
		x, y, z := float64(src[i3]), float64(src[i3+1]), float64(src[i3+2])

		arc1 := math.Sin(x*0.18+t*3.5) * math.Cos(z*0.15+t*3.0)
		arc2 := math.Cos(y*0.12+t*3.8) * math.Sin(x*0.2-t*3.2)
		arc3 := math.Sin(z*0.22-t*3.0) * math.Cos(y*0.16+t*3.5)
		electric := (arc1 + arc2 + arc3) * 3.5 * fs.Bass

		dist := math.Sqrt(x*x + y*y + z*z)
		angle := math.Atan2(z, x)
		swirl := math.Sin(angle*4+t*4.5-dist*0.08) * 2.5 * fs.Mid
		burst := math.Sin(t*4-dist*0.12) * 4 * fs.High
		sa, ca := math.Sincos(angle)

		dst[i3] = float32(x + electric + ca*swirl + burst*0.2)
		dst[i3+1] = float32(y + arc2*4*fs.Bass + burst*0.4)
		dst[i3+2] = float32(z + electric + sa*swirl + burst*0.2)

		shade(rb.Colors, f.BaseColors, i3, brainBoostGlow(dist, fs), brainBoostHeadroom)
	}
}

func (brainBoost) Orient(tr *field.Transform, fs FrameState, step float64) {
	tr.RotY += 0.003 * step * fs.Mid
	tr.RotX += 0.002 * step * fs.Bass
	tr.RotZ = math.Sin(fs.Time*2.5) * 0.15
	tr.Scale = 1 + math.Sin(fs.Time*3)*0.12*fs.Bass
}
