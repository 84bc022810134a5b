// Package audio decodes and plays audio sources and reduces them to the
// three normalized energy bands that drive the particle field.
package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
)

// BandRange is a half-open range of spectrum bins.
type BandRange struct {
	Lo, Hi int
}

// AnalyzerConfig holds spectrum parameters. The defaults mirror a browser
// analyser node: 512-point FFT, 0.8 smoothing, -100..-30 dB byte scaling.
type AnalyzerConfig struct {
	FFTSize   int
	Smoothing float64
	MinDB     float64
	MaxDB     float64
	Bass      BandRange
	Mid       BandRange
	High      BandRange
}

// DefaultAnalyzerConfig returns the standard band layout.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		FFTSize:   512,
		Smoothing: 0.8,
		MinDB:     -100,
		MaxDB:     -30,
		Bass:      BandRange{0, 50},
		Mid:       BandRange{50, 150},
		High:      BandRange{150, 255},
	}
}

// AnalyzerConfigFrom builds an analyzer config from the audio section.
func AnalyzerConfigFrom(c config.AudioConfig) AnalyzerConfig {
	return AnalyzerConfig{
		FFTSize:   c.FFTSize,
		Smoothing: c.Smoothing,
		MinDB:     c.MinDB,
		MaxDB:     c.MaxDB,
		Bass:      BandRange{c.BassBins[0], c.BassBins[1]},
		Mid:       BandRange{c.MidBins[0], c.MidBins[1]},
		High:      BandRange{c.HighBins[0], c.HighBins[1]},
	}
}

// Analyzer turns a block of mono samples into byte-scaled spectrum bins and
// band energies. Smoothing carries state between calls, so one analyzer
// serves one stream.
type Analyzer struct {
	cfg      AnalyzerConfig
	fft      *fourier.FFT
	windowed []float64
	coeffs   []complex128
	smoothed []float64
	bytes    []uint8
	scratch  []float64
}

// NewAnalyzer creates an analyzer. A non power of two size still works but
// is slower.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 512
	}
	if cfg.MaxDB <= cfg.MinDB {
		cfg.MinDB, cfg.MaxDB = -100, -30
	}
	bins := cfg.FFTSize / 2
	cfg.Bass = cfg.Bass.clip(bins)
	cfg.Mid = cfg.Mid.clip(bins)
	cfg.High = cfg.High.clip(bins)

	return &Analyzer{
		cfg:      cfg,
		fft:      fourier.NewFFT(cfg.FFTSize),
		windowed: make([]float64, cfg.FFTSize),
		coeffs:   make([]complex128, cfg.FFTSize/2+1),
		smoothed: make([]float64, bins),
		bytes:    make([]uint8, bins),
		scratch:  make([]float64, 0, bins),
	}
}

func (r BandRange) clip(bins int) BandRange {
	if r.Lo < 0 {
		r.Lo = 0
	}
	if r.Hi > bins {
		r.Hi = bins
	}
	if r.Hi < r.Lo {
		r.Hi = r.Lo
	}
	return r
}

// Size returns the FFT block size.
func (a *Analyzer) Size() int {
	return a.cfg.FFTSize
}

// Reset clears smoothing state.
func (a *Analyzer) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

// Process analyzes the most recent FFTSize samples of block (zero-padded at
// the front when shorter) and returns the band energies.
func (a *Analyzer) Process(block []float64) field.Bands {
	n := a.cfg.FFTSize
	for i := range a.windowed {
		a.windowed[i] = 0
	}
	if len(block) > n {
		block = block[len(block)-n:]
	}
	copy(a.windowed[n-len(block):], block)
	window.Blackman(a.windowed)

	a.fft.Coefficients(a.coeffs, a.windowed)

	tau := a.cfg.Smoothing
	span := a.cfg.MaxDB - a.cfg.MinDB
	for k := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[k]) / float64(n)
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*mag

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := 255 * (db - a.cfg.MinDB) / span
		switch {
		case v < 0 || math.IsNaN(v):
			v = 0
		case v > 255:
			v = 255
		}
		a.bytes[k] = uint8(v)
	}

	return field.Bands{
		Bass: a.band(a.cfg.Bass),
		Mid:  a.band(a.cfg.Mid),
		High: a.band(a.cfg.High),
	}
}

// Spectrum returns the byte-scaled bins from the last Process call.
// The slice is reused.
func (a *Analyzer) Spectrum() []uint8 {
	return a.bytes
}

func (a *Analyzer) band(r BandRange) float64 {
	if r.Hi <= r.Lo {
		return 0
	}
	a.scratch = a.scratch[:0]
	for _, b := range a.bytes[r.Lo:r.Hi] {
		a.scratch = append(a.scratch, float64(b))
	}
	return stat.Mean(a.scratch, nil) / 255
}
