package main

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/engine"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/renderer"
	"github.com/passeth/neural-visuals-v2/themes"
)

// previewFPS is the step rate used to advance the field to the requested time.
const previewFPS = 30

type stillRequest struct {
	Theme  string
	Preset string
	At     float64
	Bands  field.Bands
	Width  int
	Height int
}

// renderStill advances a fresh engine to req.At under constant bands and
// renders the last frame.
func renderStill(cfg *config.Config, reg *themes.Registry, factory pipeline.RendererFactory, req stillRequest) (*image.RGBA, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, errors.New("width and height must be positive")
	}

	eng := engine.New(reg, engine.Options{
		Workers:           cfg.Engine.Workers,
		ParallelThreshold: cfg.Engine.ParallelThreshold,
	})
	defer eng.Close()

	if err := eng.SetParams(field.VisualParams{
		Theme:           req.Theme,
		Speed:           cfg.Visual.Speed,
		Density:         cfg.Visual.Density,
		AudioReactivity: cfg.Visual.AudioReactivity,
		ColorPreset:     req.Preset,
		Seed:            cfg.Visual.Seed,
	}); err != nil {
		return nil, err
	}

	steps := int(math.Round(req.At * previewFPS))
	bands := req.Bands.Clamped()
	var rb *field.RenderBuffers
	for i := 0; i <= steps; i++ {
		var err error
		rb, err = eng.Tick(float64(i)/previewFPS, &bands)
		if err != nil {
			return nil, err
		}
	}

	rc := cfg.Render
	cam := camera.New(float32(req.Width), float32(req.Height), float32(rc.Distance), float32(rc.FovY))
	cam.Azimuth = float32(rc.Azimuth)
	cam.Elevation = float32(rc.Elevation)

	fr, release, err := factory(cam, renderer.StyleFor(eng.Descriptor(), rc))
	if err != nil {
		return nil, err
	}
	defer release()

	// the renderer reuses its frame buffer
	frame := fr.Render(rb)
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Src)
	return out, nil
}

// renderSheet renders every registered theme with its default preset into
// a grid of req-sized tiles.
func renderSheet(cfg *config.Config, reg *themes.Registry, factory pipeline.RendererFactory, req stillRequest) (*image.RGBA, error) {
	descs := reg.All()
	if len(descs) == 0 {
		return nil, errors.New("no themes registered")
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(descs)))))
	rows := (len(descs) + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, cols*req.Width, rows*req.Height))
	for i, d := range descs {
		tile := req
		tile.Theme = d.ID
		tile.Preset = ""
		img, err := renderStill(cfg, reg, factory, tile)
		if err != nil {
			return nil, err
		}
		x, y := (i%cols)*req.Width, (i/cols)*req.Height
		draw.Draw(sheet, image.Rect(x, y, x+req.Width, y+req.Height), img, image.Point{}, draw.Src)
	}
	return sheet, nil
}
