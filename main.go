package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for perf CSV and config snapshot")
	audioPath := flag.String("audio", "", "Audio file to load at startup")
	theme := flag.String("theme", "", "Starting theme (empty = use config)")
	color := flag.String("color", "", "Starting color preset (empty = use config)")
	seed := flag.Int64("seed", 0, "Field seed (0 = use config)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	gpuPoints := flag.Bool("gpu-points", false, "Draw particles as GPU points instead of software splats")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *theme != "" {
		cfg.Visual.Theme = *theme
	}
	if *color != "" {
		cfg.Visual.ColorPreset = *color
	}
	if *seed != 0 {
		cfg.Visual.Seed = *seed
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Config:    cfg,
		Headless:  *headless,
		AudioPath: *audioPath,
		OutputDir: *outputDir,
		LogStats:  *logStats,
		GPUPoints: *gpuPoints,
	}

	if *headless {
		// Headless mode - field updates at the capture rate, no raylib needed
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless run",
			"theme", cfg.Visual.Theme,
			"fps", cfg.Capture.FPS,
			"max_frames", *maxFrames,
		)

		for {
			g.UpdateHeadless()

			if *maxFrames > 0 && int(g.Tick()) >= *maxFrames {
				slog.Info("max frames reached", "frame", g.Tick())
				return
			}
		}
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Neural Visuals")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && int(g.Tick()) >= *maxFrames {
			break
		}
	}
}
