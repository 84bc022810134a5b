// Package pipeline renders videos offline: it drives the engine headlessly
// against an audio track, encodes the frames, muxes the audio back in and
// runs batches of such jobs.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrAudioNotFound is returned when a job's audio file does not exist.
var ErrAudioNotFound = errors.New("audio file not found")

// Stage names the pipeline step a job failed in.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageAudio  Stage = "audio"
	StageRender Stage = "render"
	StageEncode Stage = "encode"
	StageMux    Stage = "mux"
)

// JobError is a failure scoped to one job.
type JobError struct {
	JobID string
	Stage Stage
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s: %s: %v", e.JobID, e.Stage, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

func jobErr(id string, stage Stage, err error) *JobError {
	return &JobError{JobID: id, Stage: stage, Err: err}
}

// Job describes one video to render.
type Job struct {
	ID          string
	AudioPath   string // local file; takes precedence over AudioURL
	AudioURL    string // fetched into the work directory when AudioPath is empty
	Theme       string
	ColorPreset string
	Duration    time.Duration
}

// VisualPath is the silent intermediate video.
func (j Job) VisualPath(dir string) string {
	return filepath.Join(dir, j.ID+"_visual.mp4")
}

// FinalPath is the muxed output video.
func (j Job) FinalPath(dir string) string {
	return filepath.Join(dir, j.ID+"_final.mp4")
}

// Frames returns the number of frames for the job at fps.
func (j Job) Frames(fps int) int {
	return int(j.Duration.Seconds()*float64(fps) + 0.5)
}
