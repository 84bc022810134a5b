package renderer

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/field"
)

// Offscreen renders frames with the GPU point cloud into a render texture
// and reads them back. It opens a hidden raylib window, so it must be
// created and used from the main OS thread.
type Offscreen struct {
	cam    *camera.Camera
	cloud  *PointCloud
	style  Style
	target rl.RenderTexture2D
	w, h   int
	out    *image.RGBA
}

// NewOffscreen opens a hidden window sized to the camera viewport.
func NewOffscreen(cam *camera.Camera, st Style) *Offscreen {
	w, h := int(cam.ViewportW), int(cam.ViewportH)

	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(w), int32(h), "capture")

	return &Offscreen{
		cam:    cam,
		cloud:  NewPointCloud(st),
		style:  st,
		target: rl.LoadRenderTexture(int32(w), int32(h)),
		w:      w,
		h:      h,
		out:    image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

// SetStyle replaces the point style.
func (o *Offscreen) SetStyle(st Style) {
	o.style = st
	o.cloud.SetStyle(st)
}

// Render draws rb into the render texture and returns the frame. The
// returned image is overwritten by the next call.
func (o *Offscreen) Render(rb *field.RenderBuffers) *image.RGBA {
	rl.BeginTextureMode(o.target)
	rl.ClearBackground(o.style.Background)
	o.cloud.Draw(rb, o.cam)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(o.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	pix := o.out.Pix
	for i := 0; i < o.w*o.h && i < len(colors); i++ {
		c := colors[i]
		j := i * 4
		pix[j], pix[j+1], pix[j+2], pix[j+3] = c.R, c.G, c.B, 255
	}
	return o.out
}

// Close releases GPU resources and the hidden window.
func (o *Offscreen) Close() error {
	rl.UnloadRenderTexture(o.target)
	rl.CloseWindow()
	return nil
}
