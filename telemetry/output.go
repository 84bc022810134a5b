package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/passeth/neural-visuals-v2/config"
)

// JobRecord is one row of results.csv.
type JobRecord struct {
	JobID      string    `csv:"job_id"`
	Theme      string    `csv:"theme"`
	Preset     string    `csv:"color_preset"`
	Status     string    `csv:"status"`
	Output     string    `csv:"output"`
	Error      string    `csv:"error"`
	DurationS  float64   `csv:"duration_s"`
	Frames     int       `csv:"frames"`
	ElapsedS   float64   `csv:"elapsed_s"`
	FinishedAt time.Time `csv:"finished_at"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r JobRecord) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("job_id", r.JobID),
		slog.String("theme", r.Theme),
		slog.String("preset", r.Preset),
		slog.String("status", r.Status),
		slog.Float64("elapsed_s", r.ElapsedS),
	}
	if r.Output != "" {
		attrs = append(attrs, slog.String("output", r.Output))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}
	return slog.GroupValue(attrs...)
}

// OutputManager appends perf and job-result rows to CSV files in one
// directory. It is safe for concurrent use; a nil manager discards writes.
type OutputManager struct {
	dir         string
	perfFile    *os.File
	resultsFile *os.File

	mu sync.Mutex

	// Track if headers have been written
	perfHeaderWritten    bool
	resultsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). results.csv is appended to
// across runs; perf.csv is truncated.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	resultsPath := filepath.Join(dir, "results.csv")
	if info, err := os.Stat(resultsPath); err == nil && info.Size() > 0 {
		om.resultsHeaderWritten = true
	}
	f, err = os.OpenFile(resultsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		om.perfFile.Close()
		return nil, fmt.Errorf("opening results.csv: %w", err)
	}
	om.resultsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}
	if err := writeRows(om.perfFile, records, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteResult appends a job result to results.csv.
func (om *OutputManager) WriteResult(r JobRecord) error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	if err := writeRows(om.resultsFile, []JobRecord{r}, &om.resultsHeaderWritten); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}

// writeRows marshals records, including the header only on the first write.
func writeRows(f *os.File, records any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// ReadResults loads every row of results.csv in dir.
func ReadResults(dir string) ([]JobRecord, error) {
	f, err := os.Open(filepath.Join(dir, "results.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []JobRecord
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading results.csv: %w", err)
	}
	return rows, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	om.mu.Lock()
	defer om.mu.Unlock()

	var firstErr error
	for _, f := range []*os.File{om.perfFile, om.resultsFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
