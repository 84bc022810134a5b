// Package game is the interactive viewer: it wires the engine, the audio
// player, the camera and the renderers into one raylib frame loop.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/audio"
	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/engine"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/renderer"
	"github.com/passeth/neural-visuals-v2/telemetry"
	"github.com/passeth/neural-visuals-v2/themes"
	"github.com/passeth/neural-visuals-v2/ui"
)

// messageTTL is how long a status message stays on screen.
const messageTTL = 4 * time.Second

// Options configures a Game.
type Options struct {
	Config    *config.Config
	Headless  bool
	AudioPath string // loaded at startup when set
	OutputDir string // perf.csv and config snapshot; empty = none
	LogStats  bool
	GPUPoints bool // draw with raylib points instead of software splats
}

// Game holds the complete viewer state.
type Game struct {
	cfg *config.Config
	reg *themes.Registry
	eng *engine.Engine
	cam *camera.Camera

	// Interactive mode
	player     *audio.Player
	screen     *renderer.Screen
	cloud      *renderer.PointCloud
	background *renderer.BackgroundRenderer
	controls   *ui.ControlPanel
	hud        *ui.HUD
	perfPanel  *ui.PerfPanel

	// Headless mode
	track *audio.Track

	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager

	headless  bool
	logStats  bool
	gpuPoints bool
	showPerf  bool

	frame   int32
	elapsed float64
	rb      *field.RenderBuffers
	bands   *field.Bands

	// Density is applied when the slider is released; regenerating on
	// every drag step would rebuild the field each frame.
	pendingDensity float32

	message      string
	messageUntil time.Time

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a viewer. In interactive mode the raylib
// window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	if opts.Headless {
		w, h = float32(cfg.Capture.Width), float32(cfg.Capture.Height)
	}

	reg := themes.NewRegistry()
	g := &Game{
		cfg:          cfg,
		reg:          reg,
		eng:          engine.New(reg, engine.Options{Workers: cfg.Engine.Workers, ParallelThreshold: cfg.Engine.ParallelThreshold}),
		cam:          newCamera(w, h, cfg.Render),
		headless:     opts.Headless,
		logStats:     opts.LogStats,
		gpuPoints:    opts.GPUPoints,
		screenWidth:  w,
		screenHeight: h,
	}

	budget := time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1))
	if opts.Headless {
		budget = cfg.Derived.FrameInterval
	}
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow, budget)

	if err := g.eng.SetParams(field.VisualParams{
		Theme:           cfg.Visual.Theme,
		Speed:           cfg.Visual.Speed,
		Density:         cfg.Visual.Density,
		AudioReactivity: cfg.Visual.AudioReactivity,
		ColorPreset:     cfg.Visual.ColorPreset,
		Seed:            cfg.Visual.Seed,
	}); err != nil {
		g.eng.Close()
		return nil, fmt.Errorf("activating theme %q: %w", cfg.Visual.Theme, err)
	}
	g.pendingDensity = float32(g.eng.Params().Density)

	if opts.OutputDir != "" {
		out, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			g.eng.Close()
			return nil, err
		}
		if err := out.WriteConfig(cfg); err != nil {
			slog.Warn("failed to write config snapshot", "error", err)
		}
		g.output = out
	}

	if g.headless {
		if opts.AudioPath != "" {
			tr, err := audio.OpenTrack(opts.AudioPath, audio.AnalyzerConfigFrom(cfg.Audio))
			if err != nil {
				g.Unload()
				return nil, err
			}
			g.track = tr
		}
		return g, nil
	}

	g.initInteractive()
	if opts.AudioPath != "" {
		g.loadAudio(opts.AudioPath)
	}
	return g, nil
}

func newCamera(w, h float32, rc config.RenderConfig) *camera.Camera {
	cam := camera.New(w, h, float32(rc.Distance), float32(rc.FovY))
	cam.Azimuth = float32(rc.Azimuth)
	cam.Elevation = float32(rc.Elevation)
	cam.SetHome()
	return cam
}

// initInteractive creates the raylib-backed renderers and UI.
func (g *Game) initInteractive() {
	st := renderer.StyleFor(g.eng.Descriptor(), g.cfg.Render)

	g.player = audio.NewPlayer(g.cfg.Audio)
	g.screen = renderer.NewScreen(renderer.NewRasterizer(g.cam, st))
	g.cloud = renderer.NewPointCloud(st)
	g.background = renderer.NewBackgroundRenderer(int32(g.screenWidth), int32(g.screenHeight), backgroundColor(g.activePreset()))
	g.controls = ui.NewControlPanel(10, 10, 260, themeOptions(g.reg))
	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, int32(g.screenHeight)-140)
}

// Update advances one interactive frame. It must be followed by Draw.
func (g *Game) Update() {
	g.handleInput()

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseAudio)
	g.bands = g.player.Bands()

	g.perf.StartPhase(telemetry.PhaseUpdate)
	g.elapsed += float64(rl.GetFrameTime())
	g.step()
	// The tick is closed by Draw after the render phase.
}

// UpdateHeadless advances one frame at the capture frame rate without a window.
func (g *Game) UpdateHeadless() {
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseAudio)
	g.elapsed = float64(g.frame) / float64(g.cfg.Capture.FPS)
	g.bands = nil
	if g.track != nil {
		b, err := g.track.BandsAt(g.elapsed)
		if err != nil {
			slog.Warn("audio analysis failed", "error", err)
		}
		g.bands = b
	}

	g.perf.StartPhase(telemetry.PhaseUpdate)
	g.step()

	g.perf.EndTick()
	g.afterFrame()
}

func (g *Game) step() {
	rb, err := g.eng.Tick(g.elapsed, g.bands)
	if err != nil {
		if !errors.Is(err, engine.ErrNoField) {
			slog.Error("tick failed", "frame", g.frame, "error", err)
		}
		g.rb = nil
	} else {
		g.rb = rb
	}
	g.frame++
}

// loadAudio replaces the current session; on failure the previous one keeps playing.
func (g *Game) loadAudio(path string) {
	s, err := g.player.Load(path)
	if err != nil {
		slog.Warn("audio load failed", "path", path, "error", err)
		g.notify(fmt.Sprintf("Could not load %s: %v", filepath.Base(path), err))
		return
	}
	s.Play()
	g.notify("Loaded " + filepath.Base(path))
}

func (g *Game) notify(msg string) {
	g.message = msg
	g.messageUntil = time.Now().Add(messageTTL)
}

// applyTheme refreshes theme-dependent render state.
func (g *Game) applyTheme() {
	desc := g.eng.Descriptor()
	if desc == nil || g.headless {
		return
	}
	st := renderer.StyleFor(desc, g.cfg.Render)
	g.screen.Rasterizer().SetStyle(st)
	g.cloud.SetStyle(st)
	g.background.SetColor(backgroundColor(g.activePreset()))
}

// Unload releases all resources.
func (g *Game) Unload() {
	g.logSummary()
	if g.player != nil {
		if err := g.player.Close(); err != nil {
			slog.Warn("closing audio", "error", err)
		}
	}
	if g.track != nil {
		g.track.Close()
	}
	if g.screen != nil {
		g.screen.Unload()
	}
	if g.background != nil {
		g.background.Unload()
	}
	if err := g.output.Close(); err != nil {
		slog.Warn("closing output", "error", err)
	}
	g.eng.Close()
}

// Tick returns the number of frames produced so far.
func (g *Game) Tick() int32 {
	return g.frame
}

// Engine returns the underlying engine.
func (g *Game) Engine() *engine.Engine {
	return g.eng
}

// Perf returns the frame perf collector.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perf
}
