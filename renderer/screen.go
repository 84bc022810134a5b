package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/field"
)

// Screen presents rasterized frames in the raylib window. Each frame is
// splatted on the CPU, uploaded to a texture and drawn fullscreen with
// additive blending over whatever is already on screen.
type Screen struct {
	ras *Rasterizer

	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewScreen creates a screen presenter for ras.
func NewScreen(ras *Rasterizer) *Screen {
	return &Screen{ras: ras}
}

// Init allocates the texture (must be called after the raylib window is created).
func (s *Screen) Init() {
	w, h := int(s.ras.Camera().ViewportW), int(s.ras.Camera().ViewportH)
	if s.initialized && w == s.texW && h == s.texH {
		return
	}
	if s.initialized {
		rl.UnloadTexture(s.tex)
	}

	img := rl.GenImageColor(w, h, rl.Black)
	s.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(s.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	s.texW, s.texH = w, h
	s.pixels = make([]color.RGBA, w*h)
	s.initialized = true
}

// Rasterizer returns the underlying rasterizer.
func (s *Screen) Rasterizer() *Rasterizer {
	return s.ras
}

// Draw rasterizes rb and draws it over the current frame.
func (s *Screen) Draw(rb *field.RenderBuffers) {
	s.Init()

	img := s.ras.Render(rb)
	pix := img.Pix
	for i := range s.pixels {
		j := i * 4
		s.pixels[i] = color.RGBA{R: pix[j], G: pix[j+1], B: pix[j+2], A: pix[j+3]}
	}
	rl.UpdateTexture(s.tex, s.pixels)

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(s.texW), Height: float32(s.texH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(rl.GetScreenWidth()), Height: float32(rl.GetScreenHeight())}

	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DrawTexturePro(s.tex, src, dst, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
}

// Unload frees GPU resources.
func (s *Screen) Unload() {
	if !s.initialized {
		return
	}
	rl.UnloadTexture(s.tex)
	s.initialized = false
}
