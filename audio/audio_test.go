package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

const testRate = beep.SampleRate(44100)

func sine(freq float64) beep.Streamer {
	var i int
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for k := range samples {
			v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(testRate))
			samples[k] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})
}

func writeTone(t *testing.T, freq, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	n := int(seconds * float64(testRate))
	if err := wav.Encode(f, beep.Take(n, sine(freq)), format); err != nil {
		t.Fatal(err)
	}
	return path
}

func toneBlock(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(testRate))
	}
	return out
}

func TestAnalyzerSilence(t *testing.T) {
	a := NewAnalyzer(DefaultAnalyzerConfig())
	b := a.Process(make([]float64, 512))
	if b.Bass != 0 || b.Mid != 0 || b.High != 0 {
		t.Fatalf("silence produced energy: %+v", b)
	}
	for i, v := range a.Spectrum() {
		if v != 0 {
			t.Fatalf("bin %d = %d, want 0", i, v)
		}
	}
}

func TestAnalyzerBandSelectivity(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		want func(bass, mid, high float64) bool
	}{
		{"low tone lands in bass", 440, func(b, m, h float64) bool { return b > m && b > h }},
		{"mid tone lands in mid", 8000, func(b, m, h float64) bool { return m > h }},
		{"high tone lands in high", 17000, func(b, m, h float64) bool { return h > b }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(DefaultAnalyzerConfig())
			block := toneBlock(tt.freq, 512)
			var got struct{ b, m, h float64 }
			for i := 0; i < 20; i++ {
				bands := a.Process(block)
				got.b, got.m, got.h = bands.Bass, bands.Mid, bands.High
			}
			if !tt.want(got.b, got.m, got.h) {
				t.Errorf("bands = %+v", got)
			}
			for _, v := range []float64{got.b, got.m, got.h} {
				if v < 0 || v > 1 {
					t.Errorf("band %f outside [0,1]", v)
				}
			}
		})
	}
}

func TestAnalyzerSmoothingRisesTowardSteadyState(t *testing.T) {
	a := NewAnalyzer(DefaultAnalyzerConfig())
	block := toneBlock(440, 512)
	prev := -1.0
	for i := 0; i < 10; i++ {
		b := a.Process(block)
		if b.Bass < prev {
			t.Fatalf("step %d: bass fell from %f to %f", i, prev, b.Bass)
		}
		prev = b.Bass
	}

	a.Reset()
	first := a.Process(block).Bass
	if first >= prev {
		t.Errorf("after reset bass = %f, want below steady state %f", first, prev)
	}
}

func TestAnalyzerShortBlockAndClippedRanges(t *testing.T) {
	cfg := DefaultAnalyzerConfig()
	cfg.High = BandRange{150, 1000}
	a := NewAnalyzer(cfg)
	b := a.Process(toneBlock(440, 100))
	if b.Bass <= 0 {
		t.Errorf("short block bass = %f, want > 0", b.Bass)
	}
	if got := len(a.Spectrum()); got != 256 {
		t.Errorf("spectrum bins = %d, want 256", got)
	}
}

func TestTapSnapshotOrder(t *testing.T) {
	var i float64
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for k := range samples {
			samples[k] = [2]float64{i, i}
			i++
		}
		return len(samples), true
	})
	tp := newTap(src, 8)
	if tp.ready(1) {
		t.Fatal("ready before streaming")
	}

	buf := make([][2]float64, 5)
	tp.Stream(buf)
	tp.Stream(buf) // 10 samples through an 8-slot ring

	if !tp.ready(8) {
		t.Fatal("not ready after 10 samples")
	}
	got := tp.monoSnapshot(nil, 4)
	want := []float64{6, 7, 8, 9}
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("snapshot = %v, want %v", got, want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode("song.ogg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ogg: err = %v, want ErrUnsupportedFormat", err)
	}
	_, _, err = Decode(filepath.Join(t.TempDir(), "missing.wav"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v, want not-exist", err)
	}
	if !Supported("A.FLAC") || Supported("a.aac") {
		t.Error("Supported extension matching is wrong")
	}
}

func newTestSession(t *testing.T, seconds float64) *Session {
	t.Helper()
	s, err := NewSession(writeTone(t, 440, seconds), SessionOptions{
		Analyzer: DefaultAnalyzerConfig(),
		RingSize: 4096,
		Volume:   70,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionBandsLifecycle(t *testing.T) {
	s := newTestSession(t, 1)

	if s.Bands() != nil {
		t.Fatal("bands before any audio was played")
	}

	buf := make([][2]float64, 1024)
	s.Stream(buf)
	b := s.Bands()
	if b == nil {
		t.Fatal("bands absent while playing")
	}
	if b.Bass <= 0 {
		t.Errorf("bass = %f for a 440 Hz tone", b.Bass)
	}

	s.Pause()
	if s.Bands() != nil {
		t.Error("bands present while paused")
	}
	if playing := s.Toggle(); !playing {
		t.Error("toggle from paused should resume")
	}

	for !s.Ended() {
		if n, ok := s.Stream(buf); !ok && n == 0 {
			break
		}
	}
	if s.Bands() != nil {
		t.Error("bands present after end of track")
	}
}

func TestSessionPositionAndDuration(t *testing.T) {
	s := newTestSession(t, 1)
	if got := s.Duration(); got != time.Second {
		t.Errorf("duration = %v, want 1s", got)
	}
	s.Stream(make([][2]float64, 22050))
	if got := s.Position(); got != 500*time.Millisecond {
		t.Errorf("position = %v, want 500ms", got)
	}
	if err := s.Seek(2 * time.Second); err != nil {
		t.Fatal(err)
	}
	if got := s.Position(); got != time.Second {
		t.Errorf("position after over-seek = %v, want 1s", got)
	}
}

func TestSessionVolume(t *testing.T) {
	s := newTestSession(t, 1)

	tests := []struct {
		in, want float64
		silent   bool
		exp      float64
	}{
		{50, 50, false, -1},
		{100, 100, false, 0},
		{150, 100, false, 0},
		{0, 0, true, 0},
		{-5, 0, true, 0},
	}
	for _, tt := range tests {
		s.SetVolume(tt.in)
		if got := s.Volume(); got != tt.want {
			t.Errorf("SetVolume(%v): Volume() = %v, want %v", tt.in, got, tt.want)
		}
		if s.volume.Silent != tt.silent || math.Abs(s.volume.Volume-tt.exp) > 1e-12 {
			t.Errorf("SetVolume(%v): effect = {silent %v, %v}", tt.in, s.volume.Silent, s.volume.Volume)
		}
	}
}

func TestSessionAnalysisIgnoresVolume(t *testing.T) {
	s := newTestSession(t, 1)
	s.SetVolume(0)

	buf := make([][2]float64, 1024)
	s.Stream(buf)
	for _, v := range buf {
		if v != [2]float64{} {
			t.Fatal("muted session produced output")
		}
	}
	if b := s.Bands(); b == nil || b.Bass <= 0 {
		t.Errorf("muted session bands = %+v, want bass energy", b)
	}
}

func TestSessionClose(t *testing.T) {
	s := newTestSession(t, 1)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if n, ok := s.Stream(make([][2]float64, 16)); n != 0 || ok {
		t.Errorf("stream after close = (%d, %v)", n, ok)
	}
	if s.Playing() {
		t.Error("closed session reports playing")
	}
}

func TestTrackBandsAt(t *testing.T) {
	path := writeTone(t, 440, 1)
	tr, err := OpenTrack(path, DefaultAnalyzerConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if got := tr.Duration(); got != time.Second {
		t.Errorf("duration = %v, want 1s", got)
	}
	for _, sec := range []float64{0.1, 0.5, 0.9} {
		b, err := tr.BandsAt(sec)
		if err != nil {
			t.Fatal(err)
		}
		if b == nil || b.Bass <= 0 {
			t.Errorf("BandsAt(%v) = %+v, want bass energy", sec, b)
		}
	}
	b, err := tr.BandsAt(1.5)
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("BandsAt past end = %+v, want nil", b)
	}
}

func TestTrackRewindMatchesFreshRead(t *testing.T) {
	path := writeTone(t, 440, 1)

	fresh, err := OpenTrack(path, DefaultAnalyzerConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.Close()
	want, _ := fresh.BandsAt(0.25)

	tr, err := OpenTrack(path, DefaultAnalyzerConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()
	if _, err := tr.BandsAt(0.8); err != nil {
		t.Fatal(err)
	}
	got, err := tr.BandsAt(0.25)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || want == nil || *got != *want {
		t.Errorf("rewound bands = %+v, fresh = %+v", got, want)
	}
}
