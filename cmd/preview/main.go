// Preview tool - renders a theme still (or a contact sheet of every theme)
// to a PNG file for inspection.
//
// Usage: go run ./cmd/preview -theme ocean -color arctic -t 4 -out preview.png
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/themes"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	theme := flag.String("theme", "", "Theme id or alias (empty = config visual.theme)")
	color := flag.String("color", "", "Color preset (empty = theme default)")
	at := flag.Float64("t", 2, "Time in seconds to render")
	bass := flag.Float64("bass", 0.5, "Bass band level")
	mid := flag.Float64("mid", 0.3, "Mid band level")
	high := flag.Float64("high", 0.2, "High band level")
	width := flag.Int("width", 640, "Render width")
	height := flag.Int("height", 360, "Render height")
	backend := flag.String("backend", "software", "Renderer: software or raylib")
	sheet := flag.Bool("sheet", false, "Render every theme into one contact sheet")
	outPath := flag.String("out", "preview.png", "Output PNG path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	factory, err := pipeline.RendererFor(*backend)
	if err != nil {
		slog.Error("invalid backend", "error", err)
		os.Exit(1)
	}

	reg := themes.NewRegistry()
	req := stillRequest{
		Preset: *color,
		At:     *at,
		Bands:  field.Bands{Bass: *bass, Mid: *mid, High: *high},
		Width:  *width,
		Height: *height,
	}

	var img *image.RGBA
	if *sheet {
		img, err = renderSheet(cfg, reg, factory, req)
	} else {
		req.Theme = *theme
		if req.Theme == "" {
			req.Theme = cfg.Visual.Theme
		}
		img, err = renderStill(cfg, reg, factory, req)
	}
	if err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		slog.Error("failed to create output", "path", *outPath, "error", err)
		os.Exit(1)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		slog.Error("failed to encode png", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		slog.Error("failed to write png", "error", err)
		os.Exit(1)
	}

	b := img.Bounds()
	fmt.Printf("Preview rendered to: %s (%dx%d)\n", *outPath, b.Dx(), b.Dy())
}
