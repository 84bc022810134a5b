// Package renderer draws render buffers: a CPU rasterizer shared by the
// offline pipeline and the viewer, and raylib-backed screen and offscreen
// sinks.
package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/themes"
)

// Style controls how particles are splatted.
type Style struct {
	// PointSize is the splat diameter in world units, attenuated by depth.
	PointSize float32
	Opacity   float32
	// Additive accumulates overlapping splats; otherwise the last one wins.
	Additive   bool
	Background color.RGBA
}

// StyleFor combines a theme's point look with render overrides.
func StyleFor(d *themes.Descriptor, rc config.RenderConfig) Style {
	st := Style{
		PointSize:  float32(d.PointSize),
		Opacity:    float32(d.Opacity),
		Additive:   rc.Additive,
		Background: color.RGBA{A: 255},
	}
	if rc.PointSize > 0 {
		st.PointSize = float32(rc.PointSize)
	}
	if rc.Opacity > 0 {
		st.Opacity = float32(rc.Opacity)
	}
	return st
}

// ModelMatrix builds the aggregate field transform: XYZ Euler rotation
// applied after uniform scale.
func ModelMatrix(t field.Transform) mgl32.Mat4 {
	s := float32(t.Scale)
	return mgl32.HomogRotate3DX(float32(t.RotX)).
		Mul4(mgl32.HomogRotate3DY(float32(t.RotY))).
		Mul4(mgl32.HomogRotate3DZ(float32(t.RotZ))).
		Mul4(mgl32.Scale3D(s, s, s))
}

// Rasterizer splats particles into an RGBA frame on the CPU. Buffers are
// reused across frames; the returned image is overwritten by the next
// Render call.
type Rasterizer struct {
	cam   *camera.Camera
	style Style

	w, h  int
	accum []float32
	img   *image.RGBA
}

// NewRasterizer creates a rasterizer sized to the camera viewport.
func NewRasterizer(cam *camera.Camera, st Style) *Rasterizer {
	r := &Rasterizer{cam: cam, style: st}
	r.resize()
	return r
}

func (r *Rasterizer) resize() {
	w, h := int(r.cam.ViewportW), int(r.cam.ViewportH)
	if w == r.w && h == r.h && r.img != nil {
		return
	}
	r.w, r.h = w, h
	r.accum = make([]float32, w*h*3)
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// SetStyle replaces the splat style, e.g. after a theme switch.
func (r *Rasterizer) SetStyle(st Style) {
	r.style = st
}

// Camera returns the camera used for projection.
func (r *Rasterizer) Camera() *camera.Camera {
	return r.cam
}

// Render draws rb and returns the frame.
func (r *Rasterizer) Render(rb *field.RenderBuffers) *image.RGBA {
	r.resize()
	st := r.style

	bg := [3]float32{
		float32(st.Background.R) / 255,
		float32(st.Background.G) / 255,
		float32(st.Background.B) / 255,
	}
	for i := 0; i < len(r.accum); i += 3 {
		r.accum[i], r.accum[i+1], r.accum[i+2] = bg[0], bg[1], bg[2]
	}

	if rb != nil && rb.Count > 0 {
		r.splat(rb, st)
	}

	pix := r.img.Pix
	for i, j := 0, 0; i < len(r.accum); i, j = i+3, j+4 {
		pix[j] = toByte(r.accum[i])
		pix[j+1] = toByte(r.accum[i+1])
		pix[j+2] = toByte(r.accum[i+2])
		pix[j+3] = 255
	}
	return r.img
}

func (r *Rasterizer) splat(rb *field.RenderBuffers, st Style) {
	mvp := r.cam.ViewProjection().Mul4(ModelMatrix(rb.Transform))
	// Screen-space size of one world unit at depth 1
	scale := st.PointSize * float32(r.h) * 0.5

	for i := 0; i < rb.Count; i++ {
		k := i * 3
		p := mgl32.Vec3{rb.Positions[k], rb.Positions[k+1], rb.Positions[k+2]}
		sx, sy, w, ok := r.cam.Project(mvp, p)
		if !ok {
			continue
		}
		c := [3]float32{
			rb.Colors[k] * st.Opacity,
			rb.Colors[k+1] * st.Opacity,
			rb.Colors[k+2] * st.Opacity,
		}

		d := scale / w
		n := int(d + 0.5)
		if n < 1 {
			n = 1
		}
		x0 := int(math.Floor(float64(sx - float32(n)/2 + 0.5)))
		y0 := int(math.Floor(float64(sy - float32(n)/2 + 0.5)))
		for y := y0; y < y0+n; y++ {
			if y < 0 || y >= r.h {
				continue
			}
			row := y * r.w
			for x := x0; x < x0+n; x++ {
				if x < 0 || x >= r.w {
					continue
				}
				r.plot((row+x)*3, c, st.Additive)
			}
		}
	}
}

func (r *Rasterizer) plot(idx int, c [3]float32, additive bool) {
	if additive {
		r.accum[idx] += c[0]
		r.accum[idx+1] += c[1]
		r.accum[idx+2] += c[2]
		return
	}
	r.accum[idx], r.accum[idx+1], r.accum[idx+2] = c[0], c[1], c[2]
}

func toByte(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
