package game

import (
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/passeth/neural-visuals-v2/palette"
	"github.com/passeth/neural-visuals-v2/telemetry"
	"github.com/passeth/neural-visuals-v2/themes"
	"github.com/passeth/neural-visuals-v2/ui"
)

const controlsLegend = "[Tab] Panel  [Space] Play/Pause  [Drag] Orbit  [Wheel] Zoom  [Home] Reset  [G] GPU points  [P] Perf  [F11] Fullscreen"

// Draw renders the current frame.
func (g *Game) Draw() {
	g.perf.StartPhase(telemetry.PhaseRender)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	pulse := float32(0)
	if g.bands != nil {
		pulse = float32(g.bands.Bass)
	}
	g.background.Draw(pulse)

	if g.rb != nil {
		if g.gpuPoints {
			g.cloud.Draw(g.rb, g.cam)
		} else {
			g.screen.Draw(g.rb)
		}
	}

	g.drawUI()

	rl.EndDrawing()
	g.perf.EndTick()
	g.perf.RecordFrame()
	g.afterFrame()
}

// drawUI draws the HUD and the control panel and applies panel edits.
func (g *Game) drawUI() {
	res := g.controls.Draw(g.controlState())
	g.applyControls(res)
	g.handleCameraInput(res.Hovered)

	data := ui.HUDData{
		Title: "Neural Visuals",
		FPS:   rl.GetFPS(),
		Bands: g.bands,
	}
	if desc := g.eng.Descriptor(); desc != nil {
		data.ThemeName = desc.Name
		data.Preset = g.activePreset().Name
	}
	if f := g.eng.CurrentField(); f != nil {
		data.Count = f.Count
	}
	if s := g.player.Session(); s != nil {
		data.AudioName = filepath.Base(s.Path())
		data.Playing = s.Playing()
		data.Position = s.Position()
		data.Duration = s.Duration()
	}
	if time.Now().Before(g.messageUntil) {
		data.Message = g.message
	}
	g.hud.Draw(data, int32(g.screenWidth))
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	if g.showPerf {
		stats := g.perf.Stats()
		g.perfPanel.Draw(ui.PerfPanelData{
			PhaseAvg: stats.PhaseAvg,
			Total:    stats.AvgTickDuration,
			P95:      time.Duration(stats.Ticks.P95MS * float64(time.Millisecond)),
			Budget:   g.perf.Budget(),
		}, telemetry.Phases)
	}
}

// controlState snapshots the values shown by the control panel.
func (g *Game) controlState() ui.ControlState {
	p := g.eng.Params()
	st := ui.ControlState{
		Theme:      p.Theme,
		Speed:      float32(p.Speed),
		Density:    g.pendingDensity,
		Reactivity: float32(p.AudioReactivity),
		Volume:     float32(g.player.Volume()),
	}
	if f := g.eng.CurrentField(); f != nil {
		st.Preset = f.Preset
	}
	if s := g.player.Session(); s != nil {
		st.HasAudio = true
		st.Playing = s.Playing()
	}
	return st
}

// applyControls pushes panel edits into the engine and the player.
func (g *Game) applyControls(res ui.ControlResult) {
	before := g.controlState()
	after := res.State

	if after.Theme != before.Theme {
		if err := g.eng.SetTheme(after.Theme); err != nil {
			slog.Warn("theme change failed", "theme", after.Theme, "error", err)
			g.notify(err.Error())
		} else {
			g.applyTheme()
		}
	} else if after.Preset != before.Preset {
		if err := g.eng.SetColorPreset(after.Preset); err != nil {
			slog.Warn("preset change failed", "preset", after.Preset, "error", err)
		}
		g.applyTheme()
	}

	if after.Speed != before.Speed {
		g.eng.SetSpeed(float64(after.Speed))
	}
	if after.Reactivity != before.Reactivity {
		g.eng.SetAudioReactivity(float64(after.Reactivity))
	}
	if after.Volume != before.Volume {
		g.player.SetVolume(float64(after.Volume))
	}

	g.pendingDensity = after.Density
	if !rl.IsMouseButtonDown(rl.MouseButtonLeft) && float64(g.pendingDensity) != g.eng.Params().Density {
		if err := g.eng.SetDensity(float64(g.pendingDensity)); err != nil {
			slog.Warn("density change failed", "error", err)
		}
		g.pendingDensity = float32(g.eng.Params().Density)
	}

	if res.TogglePlay {
		g.togglePlayback()
	}
	if res.ResetCamera {
		g.cam.Reset()
	}
}

// activePreset returns the preset the current field was built with.
func (g *Game) activePreset() palette.Preset {
	desc := g.eng.Descriptor()
	if desc == nil {
		return palette.Preset{}
	}
	key := ""
	if f := g.eng.CurrentField(); f != nil {
		key = f.Preset
	}
	p, _ := desc.ResolvePreset(key)
	return p
}

// backgroundColor is the preset's darkest corner, dimmed towards black.
func backgroundColor(p palette.Preset) color.RGBA {
	if len(p.Anchors) == 0 {
		return color.RGBA{A: 255}
	}
	lo, _ := p.Bounds()
	c := lo.Clamped().BlendRgb(colorful.Color{}, 0.6)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// themeOptions lists the registry for the control panel.
func themeOptions(reg *themes.Registry) []ui.ThemeOption {
	all := reg.All()
	out := make([]ui.ThemeOption, 0, len(all))
	for _, d := range all {
		opt := ui.ThemeOption{ID: d.ID, Name: d.Name}
		for _, p := range d.Presets.Presets() {
			po := ui.PresetOption{Key: p.Key, Name: p.Name}
			for _, hex := range p.Swatch() {
				po.Swatch = append(po.Swatch, hexColor(hex))
			}
			opt.Presets = append(opt.Presets, po)
		}
		out = append(out, opt)
	}
	return out
}

func hexColor(hex string) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.Magenta
	}
	r, g, b := c.RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}
