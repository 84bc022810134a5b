// Offline renderer - encodes audio-reactive visuals for one track or a
// whole manifest.
//
// Usage:
//
//	go run ./cmd/render -audio music/NM001.mp3 -track NM001 -theme ocean -color arctic
//	go run ./cmd/render -batch manifest.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/telemetry"
	"github.com/passeth/neural-visuals-v2/themes"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	audioPath := flag.String("audio", "", "Audio file for a single render")
	trackID := flag.String("track", "", "Track id (default: audio file name)")
	theme := flag.String("theme", "", "Theme id or alias (empty = config visual.theme)")
	color := flag.String("color", "", "Color preset (empty = theme default)")
	duration := flag.Float64("duration", 0, "Duration in seconds (0 = batch.default_duration)")
	manifest := flag.String("batch", "", "Manifest CSV to render in order")
	backend := flag.String("backend", "", "Capture backend: software or raylib (empty = config)")
	outputDir := flag.String("output-dir", "", "Directory for results.csv and config snapshot")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *backend != "" {
		cfg.Capture.Backend = *backend
	}
	if cfg.Capture.Backend == "raylib" {
		// GL calls must stay on the thread that created the context.
		runtime.LockOSThread()
	}

	if *audioPath == "" && *manifest == "" {
		fmt.Fprintln(os.Stderr, "one of -audio or -batch is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := themes.NewRegistry()
	runner, err := pipeline.NewRunner(cfg, reg, pipeline.Options{})
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	dur := time.Duration(*duration * float64(time.Second))
	var jobs []pipeline.Job
	if *manifest != "" {
		rows, err := pipeline.LoadManifest(*manifest)
		if err != nil {
			slog.Error("failed to load manifest", "path", *manifest, "error", err)
			os.Exit(1)
		}
		jobs = pipeline.Jobs(rows, cfg.Batch.AudioDir, cfg.Batch.AudioExt, dur)
	} else {
		jobs = []pipeline.Job{singleJob(*audioPath, *trackID, *theme, *color, dur, cfg.Visual.Theme)}
	}

	slog.Info("starting render",
		"jobs", len(jobs),
		"backend", cfg.Capture.Backend,
		"size", fmt.Sprintf("%dx%d", cfg.Capture.Width, cfg.Capture.Height),
		"fps", cfg.Capture.FPS,
	)

	b := pipeline.NewBatch(runner, time.Duration(cfg.Batch.PauseSeconds*float64(time.Second)), output)
	summary := b.Run(ctx, jobs)
	slog.Info("render finished", "summary", summary)
	fmt.Println(summary)

	if summary.Failed() > 0 {
		os.Exit(1)
	}
}

func singleJob(audioPath, id, theme, color string, dur time.Duration, defTheme string) pipeline.Job {
	if id == "" {
		id = trackName(audioPath)
	}
	if theme == "" {
		theme = defTheme
	}
	return pipeline.Job{
		ID:          id,
		AudioPath:   audioPath,
		Theme:       theme,
		ColorPreset: color,
		Duration:    dur,
	}
}
