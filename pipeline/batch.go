package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/passeth/neural-visuals-v2/telemetry"
)

// JobRunner runs one job. *Runner implements it.
type JobRunner interface {
	Run(ctx context.Context, job Job) (telemetry.JobRecord, error)
}

// Summary is the outcome of a batch.
type Summary struct {
	Total     int
	Succeeded int
	Results   []telemetry.JobRecord
	Elapsed   time.Duration
}

// Failed returns the number of jobs that did not succeed.
func (s Summary) Failed() int {
	return s.Total - s.Succeeded
}

func (s Summary) String() string {
	return fmt.Sprintf("Batch complete: %d/%d succeeded", s.Succeeded, s.Total)
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("failed", s.Failed()),
		slog.Float64("elapsed_s", s.Elapsed.Seconds()),
	)
}

// Batch runs jobs one after another. A failed job is recorded and the
// batch moves on.
type Batch struct {
	runner JobRunner
	pause  time.Duration
	output *telemetry.OutputManager
}

// NewBatch creates a batch runner that waits pause between jobs and
// appends each result to output (which may be nil).
func NewBatch(runner JobRunner, pause time.Duration, output *telemetry.OutputManager) *Batch {
	return &Batch{runner: runner, pause: pause, output: output}
}

// Run processes jobs in order. Cancelling ctx marks the remaining jobs as failed.
func (b *Batch) Run(ctx context.Context, jobs []Job) Summary {
	start := time.Now()
	sum := Summary{Total: len(jobs), Results: make([]telemetry.JobRecord, 0, len(jobs))}

	slog.Info("batch started", "jobs", len(jobs))
	for i, job := range jobs {
		if i > 0 && b.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(b.pause):
			}
		}

		var rec telemetry.JobRecord
		if err := ctx.Err(); err != nil {
			rec = telemetry.JobRecord{
				JobID:      job.ID,
				Theme:      job.Theme,
				Preset:     job.ColorPreset,
				Status:     StatusError,
				Error:      jobErr(job.ID, StageRender, err).Error(),
				DurationS:  job.Duration.Seconds(),
				FinishedAt: time.Now().UTC(),
			}
		} else {
			rec, _ = b.runner.Run(ctx, job)
		}

		if rec.Status == StatusSuccess {
			sum.Succeeded++
		}
		sum.Results = append(sum.Results, rec)
		if err := b.output.WriteResult(rec); err != nil {
			slog.Warn("failed to record result", "job_id", job.ID, "error", err)
		}
		slog.Info("batch progress", "done", i+1, "total", len(jobs), "job", rec)
	}

	sum.Elapsed = time.Since(start)
	slog.Info(sum.String(), "summary", sum)
	return sum
}
