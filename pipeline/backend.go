package pipeline

import (
	"fmt"
	"image"

	"github.com/passeth/neural-visuals-v2/audio"
	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/renderer"
)

// FrameRenderer turns render buffers into an image. The image may be reused
// by the next call.
type FrameRenderer interface {
	Render(rb *field.RenderBuffers) *image.RGBA
	SetStyle(st renderer.Style)
}

// RendererFactory creates a renderer for one job and a func releasing it.
type RendererFactory func(cam *camera.Camera, st renderer.Style) (FrameRenderer, func() error, error)

// SoftwareRenderer rasterizes on the CPU.
func SoftwareRenderer(cam *camera.Camera, st renderer.Style) (FrameRenderer, func() error, error) {
	return renderer.NewRasterizer(cam, st), func() error { return nil }, nil
}

// RaylibRenderer draws on the GPU through a hidden window. Jobs using it
// must run on the main OS thread.
func RaylibRenderer(cam *camera.Camera, st renderer.Style) (FrameRenderer, func() error, error) {
	o := renderer.NewOffscreen(cam, st)
	return o, o.Close, nil
}

// RendererFor maps a capture backend name to its factory.
func RendererFor(backend string) (RendererFactory, error) {
	switch backend {
	case "", "software":
		return SoftwareRenderer, nil
	case "raylib":
		return RaylibRenderer, nil
	}
	return nil, fmt.Errorf("unknown capture backend %q", backend)
}

// BandSource yields the audio bands at a playback time.
type BandSource interface {
	BandsAt(sec float64) (*field.Bands, error)
	Close() error
}

// AudioOpener opens the band source for a local audio file.
type AudioOpener func(path string) (BandSource, error)

// TrackOpener decodes files with the audio package's offline Track.
func TrackOpener(c config.AudioConfig) AudioOpener {
	cfg := audio.AnalyzerConfigFrom(c)
	return func(path string) (BandSource, error) {
		return audio.OpenTrack(path, cfg)
	}
}
