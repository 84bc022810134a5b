package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"

	"github.com/passeth/neural-visuals-v2/field"
)

// Track analyzes a decoded source at arbitrary, mostly increasing, times
// without playing it. It keeps one FFT block of history and streams forward
// on demand, so memory stays constant for hour-long sources. Moving
// backwards seeks and drops smoothing state.
type Track struct {
	src      beep.StreamSeekCloser
	format   beep.Format
	analyzer *Analyzer

	ring  []float64
	pos   int // samples consumed
	ended bool

	buf   [][2]float64
	block []float64
}

// OpenTrack decodes path for offline analysis.
func OpenTrack(path string, cfg AnalyzerConfig) (*Track, error) {
	src, format, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return NewTrack(src, format, cfg), nil
}

// NewTrack wraps an already decoded source.
func NewTrack(src beep.StreamSeekCloser, format beep.Format, cfg AnalyzerConfig) *Track {
	an := NewAnalyzer(cfg)
	return &Track{
		src:      src,
		format:   format,
		analyzer: an,
		ring:     make([]float64, an.Size()),
		buf:      make([][2]float64, 4096),
		block:    make([]float64, 0, an.Size()),
	}
}

// Format returns the decoded format.
func (t *Track) Format() beep.Format { return t.format }

// Duration returns the source length.
func (t *Track) Duration() time.Duration {
	return t.format.SampleRate.D(t.src.Len())
}

// BandsAt returns the band energies of the block ending at sec, or nil once
// sec is past the end of the source.
func (t *Track) BandsAt(sec float64) (*field.Bands, error) {
	if sec < 0 {
		sec = 0
	}
	target := int(sec * float64(t.format.SampleRate))

	if target < t.pos {
		if err := t.rewind(target); err != nil {
			return nil, err
		}
	}
	if err := t.advance(target); err != nil {
		return nil, err
	}
	if target >= t.src.Len() || t.pos < target {
		return nil, nil
	}

	n := len(t.ring)
	t.block = t.block[:0]
	for k := 0; k < n; k++ {
		t.block = append(t.block, t.ring[(t.pos+k)%n])
	}
	b := t.analyzer.Process(t.block)
	return &b, nil
}

func (t *Track) rewind(target int) error {
	start := target - len(t.ring)
	if start < 0 {
		start = 0
	}
	if err := t.src.Seek(start); err != nil {
		return fmt.Errorf("seek track: %w", err)
	}
	for i := range t.ring {
		t.ring[i] = 0
	}
	t.pos = start
	t.ended = false
	t.analyzer.Reset()
	return nil
}

func (t *Track) advance(target int) error {
	n := len(t.ring)
	for t.pos < target && !t.ended {
		want := target - t.pos
		if want > len(t.buf) {
			want = len(t.buf)
		}
		got, ok := t.src.Stream(t.buf[:want])
		for _, s := range t.buf[:got] {
			t.ring[t.pos%n] = (s[0] + s[1]) / 2
			t.pos++
		}
		if !ok || got == 0 {
			t.ended = true
			if err := t.src.Err(); err != nil {
				return fmt.Errorf("read track: %w", err)
			}
		}
	}
	return nil
}

// Close releases the decoder.
func (t *Track) Close() error {
	return t.src.Close()
}
