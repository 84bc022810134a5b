// Package camera provides the orbit camera shared by the interactive viewer
// and the offline renderers.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// Elevation is clamped short of the poles so LookAt keeps a stable up vector.
	maxElevation = 1.4
	orbitRate    = 0.005 // radians per dragged pixel
)

// Camera orbits a target point at a fixed distance.
type Camera struct {
	// Spherical position around Target, radians
	Azimuth, Elevation float32

	// Distance from Target in world units
	Distance float32

	// Vertical field of view in degrees
	FovY float32

	Target mgl32.Vec3

	// Viewport dimensions (screen or capture size)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	Near, Far float32

	home struct{ azimuth, elevation, distance float32 }
}

// New creates a camera looking at the origin from distance along +Z.
func New(viewportW, viewportH, distance, fovY float32) *Camera {
	c := &Camera{
		Azimuth:     math.Pi / 2,
		Elevation:   0,
		Distance:    distance,
		FovY:        fovY,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 5,
		MaxDistance: 400,
		Near:        0.1,
		Far:         1000,
	}
	c.SetHome()
	return c
}

// SetHome records the current orbit as the Reset target.
func (c *Camera) SetHome() {
	c.home.azimuth = c.Azimuth
	c.home.elevation = c.Elevation
	c.home.distance = c.Distance
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	az, el, d := float64(c.Azimuth), float64(c.Elevation), float64(c.Distance)
	return c.Target.Add(mgl32.Vec3{
		float32(d * math.Cos(az) * math.Cos(el)),
		float32(d * math.Sin(el)),
		float32(d * math.Sin(az) * math.Cos(el)),
	})
}

// Aspect returns viewport width over height.
func (c *Camera) Aspect() float32 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Project maps a world point through vp to screen coordinates. w is the
// clip-space w (distance along the view axis). ok is false for points behind
// the camera or outside the view volume.
func (c *Camera) Project(vp mgl32.Mat4, p mgl32.Vec3) (sx, sy, w float32, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	w = clip.W()
	if w <= 0 {
		return 0, 0, w, false
	}
	nx, ny, nz := clip.X()/w, clip.Y()/w, clip.Z()/w
	sx = (nx + 1) / 2 * c.ViewportW
	sy = (1 - ny) / 2 * c.ViewportH
	ok = nx >= -1 && nx <= 1 && ny >= -1 && ny <= 1 && nz >= -1 && nz <= 1
	return sx, sy, w, ok
}

// WorldToScreen projects a single point. Prefer Project with a cached
// ViewProjection in loops.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy float32, ok bool) {
	sx, sy, _, ok = c.Project(c.ViewProjection(), p)
	return sx, sy, ok
}

// Orbit rotates the camera by a drag delta in screen pixels.
func (c *Camera) Orbit(dx, dy float32) {
	c.Azimuth -= dx * orbitRate
	c.Elevation = clamp(c.Elevation+dy*orbitRate, -maxElevation, maxElevation)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy multiplies the distance by factor. Factors below 1 move closer.
func (c *Camera) ZoomBy(factor float32) {
	c.SetDistance(c.Distance * factor)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its home orbit.
func (c *Camera) Reset() {
	c.Azimuth = c.home.azimuth
	c.Elevation = c.home.elevation
	c.Distance = c.home.distance
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
