package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/field"
)

// RaylibCamera converts the orbit camera for raylib's 3D mode.
func RaylibCamera(c *camera.Camera) rl.Camera3D {
	eye := c.Eye()
	return rl.NewCamera3D(
		rl.NewVector3(eye.X(), eye.Y(), eye.Z()),
		rl.NewVector3(c.Target.X(), c.Target.Y(), c.Target.Z()),
		rl.NewVector3(0, 1, 0),
		c.FovY,
		rl.CameraPerspective,
	)
}

// PointCloud draws render buffers as GPU points in raylib's 3D mode.
type PointCloud struct {
	style Style
}

// NewPointCloud creates a point cloud renderer.
func NewPointCloud(st Style) *PointCloud {
	return &PointCloud{style: st}
}

// SetStyle replaces the point style.
func (p *PointCloud) SetStyle(st Style) {
	p.style = st
}

// Draw renders rb from the camera's point of view. Must be called between
// BeginDrawing/EndDrawing or inside a texture mode.
func (p *PointCloud) Draw(rb *field.RenderBuffers, cam *camera.Camera) {
	if rb == nil || rb.Count == 0 {
		return
	}
	st := p.style
	model := ModelMatrix(rb.Transform)

	rl.BeginMode3D(RaylibCamera(cam))
	if st.Additive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}

	for i := 0; i < rb.Count; i++ {
		k := i * 3
		v := model.Mul4x1(mgl32.Vec4{rb.Positions[k], rb.Positions[k+1], rb.Positions[k+2], 1})
		col := rl.Color{
			R: toByte(rb.Colors[k] * st.Opacity),
			G: toByte(rb.Colors[k+1] * st.Opacity),
			B: toByte(rb.Colors[k+2] * st.Opacity),
			A: 255,
		}
		rl.DrawPoint3D(rl.NewVector3(v.X(), v.Y(), v.Z()), col)
	}

	if st.Additive {
		rl.EndBlendMode()
	}
	rl.EndMode3D()
}
