package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const backgroundFS = `#version 330
in vec2 fragTexCoord;
out vec4 finalColor;

uniform vec2 resolution;
uniform vec3 baseColor;
uniform float pulse;

void main() {
    vec2 uv = gl_FragCoord.xy / resolution - 0.5;
    uv.x *= resolution.x / resolution.y;
    float d = length(uv);
    float glow = exp(-d * d * 3.0) * (0.35 + 0.25 * pulse);
    vec3 col = baseColor * (1.0 - 0.6 * smoothstep(0.2, 0.9, d)) + baseColor * glow;
    finalColor = vec4(col, 1.0);
}
`

// BackgroundRenderer fills the screen with a vignette tinted by the theme
// background color. The centre glow breathes with the bass band.
type BackgroundRenderer struct {
	shader        rl.Shader
	resolutionLoc int32
	baseColorLoc  int32
	pulseLoc      int32

	screenW, screenH float32
	baseColor        [3]float32
	initialized      bool
}

// NewBackgroundRenderer creates a new background renderer.
func NewBackgroundRenderer(screenW, screenH int32, base color.RGBA) *BackgroundRenderer {
	b := &BackgroundRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
	b.SetColor(base)
	return b
}

// Init compiles the shader (must be called after raylib window is created).
func (b *BackgroundRenderer) Init() {
	if b.initialized {
		return
	}

	b.shader = rl.LoadShaderFromMemory("", backgroundFS)
	b.resolutionLoc = rl.GetShaderLocation(b.shader, "resolution")
	b.baseColorLoc = rl.GetShaderLocation(b.shader, "baseColor")
	b.pulseLoc = rl.GetShaderLocation(b.shader, "pulse")

	b.initialized = true
}

// SetColor changes the tint, e.g. after a theme switch.
func (b *BackgroundRenderer) SetColor(c color.RGBA) {
	b.baseColor = [3]float32{
		float32(c.R) / 255.0,
		float32(c.G) / 255.0,
		float32(c.B) / 255.0,
	}
}

// Resize updates the fullscreen quad size.
func (b *BackgroundRenderer) Resize(screenW, screenH int32) {
	b.screenW = float32(screenW)
	b.screenH = float32(screenH)
}

// Draw renders the background. pulse is the bass level in [0, 1].
func (b *BackgroundRenderer) Draw(pulse float32) {
	if !b.initialized {
		b.Init()
	}

	rl.BeginShaderMode(b.shader)

	rl.SetShaderValue(b.shader, b.resolutionLoc, []float32{b.screenW, b.screenH}, rl.ShaderUniformVec2)
	rl.SetShaderValue(b.shader, b.baseColorLoc, b.baseColor[:], rl.ShaderUniformVec3)
	rl.SetShaderValue(b.shader, b.pulseLoc, []float32{pulse}, rl.ShaderUniformFloat)

	// Draw fullscreen quad
	rl.DrawRectangle(0, 0, int32(b.screenW), int32(b.screenH), rl.White)

	rl.EndShaderMode()
}

// Unload frees resources.
func (b *BackgroundRenderer) Unload() {
	if b.initialized {
		rl.UnloadShader(b.shader)
		b.initialized = false
	}
}
