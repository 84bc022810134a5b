package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/audio"
)

// orbitSpeed is radians per pixel of mouse drag.
const orbitSpeed = 0.005

// handleInput processes keyboard, mouse and dropped files.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.togglePlayback()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.gpuPoints = !g.gpuPoints
	}

	g.handleDroppedFiles()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.cam.Resize(w, h)
	g.background.Resize(int32(w), int32(h))
	g.perfPanel.SetPosition(10, int32(h)-140)
}

// handleCameraInput orbits on left drag and zooms on the wheel. It is
// skipped while the mouse is over the control panel.
func (g *Game) handleCameraInput(overPanel bool) {
	if overPanel {
		return
	}

	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		g.cam.Orbit(-d.X*orbitSpeed, d.Y*orbitSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.cam.ZoomBy(1 - wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.cam.ZoomBy(1.25)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.cam.Reset()
	}
}

// handleDroppedFiles loads the first supported audio file dropped on the window.
func (g *Game) handleDroppedFiles() {
	if !rl.IsFileDropped() {
		return
	}
	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()

	for _, path := range files {
		if audio.Supported(path) {
			g.loadAudio(path)
			return
		}
	}
	g.notify("Unsupported file; drop a .wav, .mp3 or .flac")
}

func (g *Game) togglePlayback() {
	if _, err := g.player.Toggle(); err != nil {
		g.notify("No audio loaded; drop a file on the window")
	}
}
