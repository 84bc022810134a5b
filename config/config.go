// Package config provides configuration loading and access for the visualizer.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Visual    VisualConfig    `yaml:"visual"`
	Engine    EngineConfig    `yaml:"engine"`
	Audio     AudioConfig     `yaml:"audio"`
	Render    RenderConfig    `yaml:"render"`
	Capture   CaptureConfig   `yaml:"capture"`
	Batch     BatchConfig     `yaml:"batch"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the interactive viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// VisualConfig holds the initial visual parameters.
type VisualConfig struct {
	Theme           string  `yaml:"theme"`
	Speed           float64 `yaml:"speed"`
	Density         float64 `yaml:"density"`
	AudioReactivity float64 `yaml:"audio_reactivity"`
	ColorPreset     string  `yaml:"color_preset"` // empty = theme default
	Seed            int64   `yaml:"seed"`         // 0 = time-based
}

// EngineConfig holds frame update parallelism settings.
type EngineConfig struct {
	Workers           int `yaml:"workers"`            // 0 = GOMAXPROCS
	ParallelThreshold int `yaml:"parallel_threshold"` // particle count below which update runs on one goroutine
}

// AudioConfig holds spectrum analysis and playback parameters.
type AudioConfig struct {
	FFTSize   int     `yaml:"fft_size"`
	Smoothing float64 `yaml:"smoothing"` // temporal smoothing of magnitudes, 0..1
	MinDB     float64 `yaml:"min_db"`
	MaxDB     float64 `yaml:"max_db"`
	BassBins  [2]int  `yaml:"bass_bins"` // [lo, hi)
	MidBins   [2]int  `yaml:"mid_bins"`
	HighBins  [2]int  `yaml:"high_bins"`
	RingSize  int     `yaml:"ring_size"` // samples kept for analysis
	Volume    float64 `yaml:"volume"`    // percent 0..100
	BufferMS  int     `yaml:"buffer_ms"` // speaker buffer
}

// RenderConfig holds point-cloud rendering parameters.
type RenderConfig struct {
	PointSize float64 `yaml:"point_size"` // world units; 0 = theme default
	Opacity   float64 `yaml:"opacity"`    // 0 = theme default
	FovY      float64 `yaml:"fovy"`       // degrees
	Distance  float64 `yaml:"distance"`
	Elevation float64 `yaml:"elevation"` // radians
	Azimuth   float64 `yaml:"azimuth"`   // radians
	Additive  bool    `yaml:"additive"`
}

// CaptureConfig holds offline video capture parameters.
type CaptureConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	FPS              int     `yaml:"fps"`
	Backend          string  `yaml:"backend"` // "software" or "raylib"
	FFmpeg           string  `yaml:"ffmpeg"`
	Codec            string  `yaml:"codec"`
	Preset           string  `yaml:"preset"`
	PixFmt           string  `yaml:"pix_fmt"`
	AudioCodec       string  `yaml:"audio_codec"`
	AudioBitrate     string  `yaml:"audio_bitrate"`
	OutputDir        string  `yaml:"output_dir"`
	KeepIntermediate bool    `yaml:"keep_intermediate"`
	SettleSeconds    float64 `yaml:"settle_seconds"` // frames rendered and discarded before capture starts
}

// BatchConfig holds batch runner parameters.
type BatchConfig struct {
	AudioDir        string  `yaml:"audio_dir"`
	AudioExt        string  `yaml:"audio_ext"`
	PauseSeconds    float64 `yaml:"pause_seconds"`
	DefaultDuration float64 `yaml:"default_duration"` // seconds
}

// ServerConfig holds job-submission service parameters.
type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	WorkDir      string  `yaml:"work_dir"`
	TestDuration float64 `yaml:"test_duration"` // seconds
	MaxUploadMB  int64   `yaml:"max_upload_mb"`
	FetchTimeout float64 `yaml:"fetch_timeout"` // seconds
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // frames in the rolling perf window
	LogEvery   int `yaml:"log_every"`   // frames between perf log lines (0 = never)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32     float32
	ScreenH32     float32
	FrameInterval time.Duration // 1/Capture.FPS
	MaxUpload     int64         // Server.MaxUploadMB in bytes
	VolumeFrac    float64       // Audio.Volume / 100
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Capture.FPS <= 0 {
		c.Capture.FPS = 60
	}
	c.Derived.FrameInterval = time.Second / time.Duration(c.Capture.FPS)
	c.Derived.MaxUpload = c.Server.MaxUploadMB << 20

	if c.Audio.Volume < 0 {
		c.Audio.Volume = 0
	} else if c.Audio.Volume > 100 {
		c.Audio.Volume = 100
	}
	c.Derived.VolumeFrac = c.Audio.Volume / 100
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
