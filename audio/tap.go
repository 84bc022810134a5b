package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// tap wraps a streamer and records the most recently played samples into a
// ring buffer so the analyzer can look at what the listener hears.
type tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	written   int
	mu        sync.RWMutex
}

func newTap(src beep.Streamer, ringSize int) *tap {
	if ringSize <= 0 {
		ringSize = 4096
	}
	return &tap{
		Source: src,
		buffer: make([][2]float64, ringSize),
	}
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex++
			if t.nextIndex >= len(t.buffer) {
				t.nextIndex = 0
			}
		}
		t.written += n
		t.mu.Unlock()
	}
	return n, ok
}

func (t *tap) Err() error { return t.Source.Err() }

// ready reports whether at least n samples have passed through.
func (t *tap) ready(n int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.written >= n
}

// monoSnapshot appends the last n samples, averaged to mono and oldest
// first, to dst.
func (t *tap) monoSnapshot(dst []float64, n int) []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > len(t.buffer) {
		n = len(t.buffer)
	}
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := 0; i < n; i++ {
		s := t.buffer[idx]
		dst = append(dst, (s[0]+s[1])/2)
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return dst
}
