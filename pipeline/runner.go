package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/passeth/neural-visuals-v2/camera"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/engine"
	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/renderer"
	"github.com/passeth/neural-visuals-v2/telemetry"
	"github.com/passeth/neural-visuals-v2/themes"
)

// Job result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// progressEvery is the number of frames between progress log lines.
const progressEvery = 3600

// Options overrides a Runner's collaborators. Zero fields use the
// ffmpeg, Track and config-selected renderer defaults.
type Options struct {
	Encoder   Encoder
	Muxer     Muxer
	OpenAudio AudioOpener
	Renderer  RendererFactory
	Fetcher   *Fetcher
	OutputDir string // default capture.output_dir
}

// Runner renders single jobs.
type Runner struct {
	cfg *config.Config
	reg *themes.Registry

	enc         Encoder
	mux         Muxer
	openAudio   AudioOpener
	newRenderer RendererFactory
	fetcher     *Fetcher
	outDir      string
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, reg *themes.Registry, opts Options) (*Runner, error) {
	r := &Runner{
		cfg:         cfg,
		reg:         reg,
		enc:         opts.Encoder,
		mux:         opts.Muxer,
		openAudio:   opts.OpenAudio,
		newRenderer: opts.Renderer,
		fetcher:     opts.Fetcher,
		outDir:      opts.OutputDir,
	}

	if r.enc == nil || r.mux == nil {
		ff := FFmpegFrom(cfg.Capture)
		if r.enc == nil {
			r.enc = ff
		}
		if r.mux == nil {
			r.mux = ff
		}
	}
	if r.openAudio == nil {
		r.openAudio = TrackOpener(cfg.Audio)
	}
	if r.newRenderer == nil {
		f, err := RendererFor(cfg.Capture.Backend)
		if err != nil {
			return nil, err
		}
		r.newRenderer = f
	}
	if r.fetcher == nil {
		r.fetcher = NewFetcher(cfg.Server.WorkDir, time.Duration(cfg.Server.FetchTimeout*float64(time.Second)))
	}
	if r.outDir == "" {
		r.outDir = cfg.Capture.OutputDir
	}
	return r, nil
}

// OutputDir returns where final videos are written.
func (r *Runner) OutputDir() string {
	return r.outDir
}

// Run renders one job. The returned record is complete whether or not the
// job failed; the error is a *JobError.
func (r *Runner) Run(ctx context.Context, job Job) (telemetry.JobRecord, error) {
	if job.Duration <= 0 {
		job.Duration = time.Duration(r.cfg.Batch.DefaultDuration * float64(time.Second))
	}

	start := time.Now()
	rec := telemetry.JobRecord{
		JobID:     job.ID,
		Theme:     job.Theme,
		Preset:    job.ColorPreset,
		Status:    StatusError,
		DurationS: job.Duration.Seconds(),
	}

	slog.Info("starting job",
		"job_id", job.ID,
		"theme", job.Theme,
		"preset", job.ColorPreset,
		"duration_s", job.Duration.Seconds(),
	)

	out, frames, err := r.run(ctx, job)
	rec.Frames = frames
	rec.ElapsedS = time.Since(start).Seconds()
	rec.FinishedAt = time.Now().UTC()

	if err != nil {
		rec.Error = err.Error()
		slog.Error("job failed", "job", rec)
		return rec, err
	}

	rec.Status = StatusSuccess
	rec.Output = out
	slog.Info("job complete", "job", rec)
	return rec, nil
}

func (r *Runner) run(ctx context.Context, job Job) (string, int, error) {
	if job.ID == "" {
		return "", 0, jobErr(job.ID, StageAudio, errors.New("missing job id"))
	}

	audioPath := job.AudioPath
	if audioPath == "" && job.AudioURL != "" {
		p, err := r.fetcher.Fetch(ctx, job.AudioURL, job.ID)
		if err != nil {
			return "", 0, jobErr(job.ID, StageFetch, err)
		}
		audioPath = p
	}
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) || audioPath == "" {
			err = fmt.Errorf("%w: %q", ErrAudioNotFound, audioPath)
		}
		return "", 0, jobErr(job.ID, StageAudio, err)
	}

	desc, err := r.reg.Get(job.Theme)
	if err != nil {
		return "", 0, jobErr(job.ID, StageRender, err)
	}

	src, err := r.openAudio(audioPath)
	if err != nil {
		return "", 0, jobErr(job.ID, StageAudio, err)
	}
	defer src.Close()

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return "", 0, jobErr(job.ID, StageEncode, err)
	}
	visual := job.VisualPath(r.outDir)
	final := job.FinalPath(r.outDir)

	frames, err := r.render(ctx, job, desc, src, visual)
	if err != nil {
		os.Remove(visual)
		return "", frames, err
	}

	if err := r.mux.Mux(ctx, visual, audioPath, final); err != nil {
		os.Remove(final)
		if !r.cfg.Capture.KeepIntermediate {
			os.Remove(visual)
		}
		return "", frames, jobErr(job.ID, StageMux, err)
	}
	if !r.cfg.Capture.KeepIntermediate {
		if err := os.Remove(visual); err != nil {
			slog.Warn("failed to remove intermediate video", "path", visual, "error", err)
		}
	}
	return final, frames, nil
}

// render drives the frame loop and encodes frames to visual.
func (r *Runner) render(ctx context.Context, job Job, desc *themes.Descriptor, src BandSource, visual string) (int, error) {
	cc := r.cfg.Capture
	fps := cc.FPS

	eng := engine.New(r.reg, engine.Options{
		Workers:           r.cfg.Engine.Workers,
		ParallelThreshold: r.cfg.Engine.ParallelThreshold,
	})
	defer eng.Close()

	if err := eng.SetParams(field.VisualParams{
		Theme:           desc.ID,
		Speed:           r.cfg.Visual.Speed,
		Density:         r.cfg.Visual.Density,
		AudioReactivity: r.cfg.Visual.AudioReactivity,
		ColorPreset:     job.ColorPreset,
		Seed:            r.cfg.Visual.Seed,
	}); err != nil {
		return 0, jobErr(job.ID, StageRender, err)
	}

	rc := r.cfg.Render
	cam := camera.New(float32(cc.Width), float32(cc.Height), float32(rc.Distance), float32(rc.FovY))
	cam.Azimuth = float32(rc.Azimuth)
	cam.Elevation = float32(rc.Elevation)

	fr, release, err := r.newRenderer(cam, renderer.StyleFor(desc, rc))
	if err != nil {
		return 0, jobErr(job.ID, StageRender, err)
	}
	defer func() {
		if err := release(); err != nil {
			slog.Warn("failed to release renderer", "error", err)
		}
	}()

	sink, err := r.enc.Open(ctx, visual, cc.Width, cc.Height, fps)
	if err != nil {
		return 0, jobErr(job.ID, StageEncode, err)
	}
	defer sink.Close()

	perf := telemetry.NewPerfCollector(r.cfg.Telemetry.PerfWindow, r.cfg.Derived.FrameInterval)
	settle := int(cc.SettleSeconds*float64(fps) + 0.5)
	for i := 0; i < settle; i++ {
		if _, err := eng.Tick(float64(i)/float64(fps), nil); err != nil {
			return 0, jobErr(job.ID, StageRender, err)
		}
	}

	total := job.Frames(fps)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, jobErr(job.ID, StageRender, err)
		}
		t := float64(i) / float64(fps)

		perf.StartTick()
		perf.StartPhase(telemetry.PhaseAudio)
		bands, err := src.BandsAt(t)
		if err != nil {
			return i, jobErr(job.ID, StageAudio, err)
		}

		perf.StartPhase(telemetry.PhaseUpdate)
		rb, err := eng.Tick(t+float64(settle)/float64(fps), bands)
		if err != nil {
			return i, jobErr(job.ID, StageRender, err)
		}

		perf.StartPhase(telemetry.PhaseRender)
		img := fr.Render(rb)

		perf.StartPhase(telemetry.PhaseEncode)
		if err := sink.WriteFrame(img); err != nil {
			return i, jobErr(job.ID, StageEncode, err)
		}
		perf.EndTick()

		if (i+1)%progressEvery == 0 {
			slog.Info("render progress",
				"job_id", job.ID,
				"frame", i+1,
				"frames", total,
				"pct", 100*float64(i+1)/float64(total),
				"perf", perf.Stats(),
			)
		}
	}

	if err := sink.Close(); err != nil {
		return total, jobErr(job.ID, StageEncode, err)
	}
	return total, nil
}
