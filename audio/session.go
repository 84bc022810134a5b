package audio

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/passeth/neural-visuals-v2/field"
)

// ErrNoSession is returned by Player operations that need a loaded source.
var ErrNoSession = errors.New("no audio session")

// SessionOptions configures the playback chain of a Session.
type SessionOptions struct {
	Analyzer AnalyzerConfig
	RingSize int
	Volume   float64 // percent 0..100
}

// Session owns one decoded source and its playback chain:
// decoder -> tap -> volume -> ctrl. The tap sits before the volume stage so
// band energies do not depend on the listening level.
//
// A Session is a beep.Streamer. Mutating methods take the supplied locker,
// which for live playback is the speaker lock.
type Session struct {
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	tap      *tap
	volume   *effects.Volume
	ctrl     *beep.Ctrl
	out      beep.Streamer
	lk       sync.Locker

	percent float64
	ended   atomic.Bool
	closed  atomic.Bool

	amu      sync.Mutex
	analyzer *Analyzer
	block    []float64
}

// NewSession decodes path and builds its playback chain. The
// session does nothing until something streams it.
func NewSession(path string, opts SessionOptions, lk sync.Locker) (*Session, error) {
	streamer, format, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return newSession(path, streamer, format, opts, lk), nil
}

func newSession(path string, streamer beep.StreamSeekCloser, format beep.Format, opts SessionOptions, lk sync.Locker) *Session {
	if lk == nil {
		lk = &sync.Mutex{}
	}
	an := NewAnalyzer(opts.Analyzer)
	ring := opts.RingSize
	if ring < an.Size() {
		ring = an.Size()
	}

	s := &Session{
		path:     path,
		streamer: streamer,
		format:   format,
		lk:       lk,
		analyzer: an,
		block:    make([]float64, 0, an.Size()),
	}
	s.tap = newTap(streamer, ring)
	s.volume = &effects.Volume{Streamer: s.tap, Base: 2}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	s.out = beep.Seq(s.ctrl, beep.Callback(func() {
		s.ended.Store(true)
	}))
	s.applyVolume(opts.Volume)
	return s
}

// Stream implements beep.Streamer.
func (s *Session) Stream(samples [][2]float64) (int, bool) {
	if s.closed.Load() {
		return 0, false
	}
	return s.out.Stream(samples)
}

// Err implements beep.Streamer.
func (s *Session) Err() error { return s.streamer.Err() }

// Path returns the source file path.
func (s *Session) Path() string { return s.path }

// Format returns the decoded format.
func (s *Session) Format() beep.Format { return s.format }

// Play resumes playback.
func (s *Session) Play() { s.setPaused(false) }

// Pause suspends playback. Bands report absent while paused.
func (s *Session) Pause() { s.setPaused(true) }

// Toggle flips between playing and paused and returns the new playing state.
func (s *Session) Toggle() bool {
	s.lk.Lock()
	s.ctrl.Paused = !s.ctrl.Paused
	paused := s.ctrl.Paused
	s.lk.Unlock()
	return !paused && !s.Ended()
}

func (s *Session) setPaused(p bool) {
	s.lk.Lock()
	s.ctrl.Paused = p
	s.lk.Unlock()
}

// Paused reports whether playback is paused.
func (s *Session) Paused() bool {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.ctrl.Paused
}

// Ended reports whether the source has played to its end.
func (s *Session) Ended() bool { return s.ended.Load() }

// Playing reports whether audio is currently being produced.
func (s *Session) Playing() bool {
	return !s.closed.Load() && !s.Ended() && !s.Paused()
}

// SetVolume sets the output level as a percentage, clamped to 0..100.
func (s *Session) SetVolume(percent float64) {
	s.lk.Lock()
	s.applyVolume(percent)
	s.lk.Unlock()
}

func (s *Session) applyVolume(percent float64) {
	percent = math.Max(0, math.Min(100, percent))
	s.percent = percent
	if percent == 0 {
		s.volume.Silent = true
		s.volume.Volume = 0
		return
	}
	s.volume.Silent = false
	s.volume.Volume = math.Log2(percent / 100)
}

// Volume returns the output level percentage.
func (s *Session) Volume() float64 {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.percent
}

// Position returns the current playback time.
func (s *Session) Position() time.Duration {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.format.SampleRate.D(s.streamer.Position())
}

// Duration returns the total length of the source.
func (s *Session) Duration() time.Duration {
	return s.format.SampleRate.D(s.streamer.Len())
}

// Seek moves playback to d, clamped to the source length.
func (s *Session) Seek(d time.Duration) error {
	pos := s.format.SampleRate.N(d)
	if pos < 0 {
		pos = 0
	}
	if n := s.streamer.Len(); pos > n {
		pos = n
	}
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.streamer.Seek(pos)
}

// Bands analyzes the most recently played block. It returns nil when the
// session is not playing or fewer than one FFT block has been played.
func (s *Session) Bands() *field.Bands {
	if !s.Playing() || !s.tap.ready(s.analyzer.Size()) {
		return nil
	}
	s.amu.Lock()
	defer s.amu.Unlock()
	s.block = s.tap.monoSnapshot(s.block[:0], s.analyzer.Size())
	b := s.analyzer.Process(s.block)
	return &b
}

// Spectrum returns a copy of the byte spectrum from the last Bands call.
func (s *Session) Spectrum() []uint8 {
	s.amu.Lock()
	defer s.amu.Unlock()
	return append([]uint8(nil), s.analyzer.Spectrum()...)
}

// Close releases the decoder and its file. Further streaming yields nothing.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.streamer.Close()
}
