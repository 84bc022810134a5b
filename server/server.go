// Package server exposes the offline pipeline over HTTP: single renders
// that return the finished video, background batches, and a short test clip.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/passeth/neural-visuals-v2/audio"
	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/pipeline"
	"github.com/passeth/neural-visuals-v2/telemetry"
)

// ServiceName is reported by the health check.
const ServiceName = "neural-visuals-generator"

// Request defaults.
const (
	DefaultTheme       = "mentalfocus"
	DefaultPreset      = "electric"
	DefaultTestTheme   = "ocean"
	DefaultTestPreset  = "midnight"
	DefaultDurationSec = 3600
)

// multipartMemory is the part of an upload kept in memory before spilling to disk.
const multipartMemory = 32 << 20

var trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// BatchTrack is one entry of a batch request.
type BatchTrack struct {
	TrackID     string  `json:"trackId"`
	AudioURL    string  `json:"audioUrl"`
	Theme       string  `json:"theme"`
	ColorPreset string  `json:"colorPreset"`
	Duration    float64 `json:"duration"` // seconds
}

// BatchRequest is the body of POST /api/batch.
type BatchRequest struct {
	Tracks []BatchTrack `json:"tracks"`
}

// BatchResponse acknowledges a batch before processing starts.
type BatchResponse struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	TrackIDs []string `json:"trackIds"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server handles job-submission requests.
type Server struct {
	runner  pipeline.JobRunner
	output  *telemetry.OutputManager
	workDir string

	maxUpload    int64
	testDuration time.Duration
	batchPause   time.Duration

	// renders run one at a time
	renderMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
}

// New creates a server. output may be nil.
func New(cfg *config.Config, runner pipeline.JobRunner, output *telemetry.OutputManager) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		runner:       runner,
		output:       output,
		workDir:      cfg.Server.WorkDir,
		maxUpload:    cfg.Derived.MaxUpload,
		testDuration: time.Duration(cfg.Server.TestDuration * float64(time.Second)),
		batchPause:   time.Duration(cfg.Batch.PauseSeconds * float64(time.Second)),
		ctx:          ctx,
		cancel:       cancel,
		now:          time.Now,
	}
}

// RegisterRoutes registers the service routes on the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/batch", s.handleBatch)
	mux.HandleFunc("POST /api/test", s.handleTest)
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Wait blocks until background batches finish.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Close cancels background batches and waits for them.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   ServiceName,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

// handleGenerate renders one uploaded track and returns the video.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trackID := r.FormValue("trackId")
	file, header, err := r.FormFile("audio")
	if trackID == "" || err != nil {
		writeError(w, http.StatusBadRequest, "Missing trackId or audio file")
		return
	}
	defer file.Close()
	if !trackIDPattern.MatchString(trackID) {
		writeError(w, http.StatusBadRequest, "Invalid trackId")
		return
	}

	dur := DefaultDurationSec
	if v := r.FormValue("duration"); v != "" {
		dur, err = strconv.Atoi(v)
		if err != nil || dur <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid duration")
			return
		}
	}

	job := pipeline.Job{
		ID:          trackID,
		Theme:       formValue(r, "theme", DefaultTheme),
		ColorPreset: formValue(r, "colorPreset", DefaultPreset),
		Duration:    time.Duration(dur) * time.Second,
	}
	slog.Info("received request", "job_id", job.ID, "theme", job.Theme, "preset", job.ColorPreset)
	s.renderUpload(w, r, job, file, header, trackID+"_final.mp4")
}

// handleTest renders a short clip of an uploaded track.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer file.Close()

	job := pipeline.Job{
		ID:          "test",
		Theme:       formValue(r, "theme", DefaultTestTheme),
		ColorPreset: formValue(r, "colorPreset", DefaultTestPreset),
		Duration:    s.testDuration,
	}
	slog.Info("test request", "theme", job.Theme, "preset", job.ColorPreset)
	s.renderUpload(w, r, job, file, header, "test.mp4")
}

// renderUpload saves the upload, runs the job and streams the result back.
// The whole exchange holds renderMu: concurrent requests may share a job id
// and therefore an output path. Audio and video are removed before the
// lock is released.
func (s *Server) renderUpload(w http.ResponseWriter, r *http.Request, job pipeline.Job, file multipart.File, header *multipart.FileHeader, downloadName string) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !audio.Supported("x" + ext) {
		ext = ".mp3"
	}

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	audioPath, err := s.saveUpload(file, job.ID+"-*"+ext)
	if err != nil {
		slog.Error("failed to save upload", "job_id", job.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer removeFile(audioPath)
	job.AudioPath = audioPath

	rec, err := s.runner.Run(r.Context(), job)
	if werr := s.output.WriteResult(rec); werr != nil {
		slog.Warn("failed to record result", "job_id", job.ID, "error", werr)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer removeFile(rec.Output)

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	http.ServeFile(w, r, rec.Output)
}

// handleBatch acknowledges the batch and processes it in the background.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid tracks array")
		return
	}

	jobs := make([]pipeline.Job, 0, len(req.Tracks))
	ids := make([]string, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		if !trackIDPattern.MatchString(t.TrackID) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid trackId %q", t.TrackID))
			return
		}
		dur := t.Duration
		if dur <= 0 {
			dur = DefaultDurationSec
		}
		jobs = append(jobs, pipeline.Job{
			ID:          t.TrackID,
			AudioURL:    t.AudioURL,
			Theme:       t.Theme,
			ColorPreset: t.ColorPreset,
			Duration:    time.Duration(dur * float64(time.Second)),
		})
		ids = append(ids, t.TrackID)
	}

	slog.Info("batch request", "tracks", len(jobs))
	writeJSON(w, http.StatusOK, BatchResponse{
		Status:   "processing",
		Message:  fmt.Sprintf("Processing %d tracks", len(jobs)),
		TrackIDs: ids,
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		b := pipeline.NewBatch(&cleanupRunner{next: s.runner, dir: s.workDir, mu: &s.renderMu}, s.batchPause, s.output)
		b.Run(s.ctx, jobs)
	}()
}

func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) error {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return fmt.Errorf("invalid upload: %w", err)
	}
	return nil
}

// saveUpload copies src to a new file in the work dir named by pattern
// (os.CreateTemp syntax).
func (s *Server) saveUpload(src io.Reader, pattern string) (string, error) {
	if err := os.MkdirAll(s.workDir, 0755); err != nil {
		return "", err
	}
	dst, err := os.CreateTemp(s.workDir, pattern)
	if err != nil {
		return "", err
	}
	path := dst.Name()
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return path, dst.Close()
}

// cleanupRunner serializes batch jobs with direct renders and removes the
// fetched audio after each job.
type cleanupRunner struct {
	next pipeline.JobRunner
	dir  string
	mu   *sync.Mutex
}

func (c *cleanupRunner) Run(ctx context.Context, job pipeline.Job) (telemetry.JobRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.next.Run(ctx, job)
	if job.AudioURL != "" {
		matches, _ := filepath.Glob(filepath.Join(c.dir, job.ID+".*"))
		for _, m := range matches {
			removeFile(m)
		}
	}
	return rec, err
}

func formValue(r *http.Request, key, def string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return def
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("cleanup failed", "path", path, "error", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
