package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/passeth/neural-visuals-v2/config"
	"github.com/passeth/neural-visuals-v2/field"
)

// speakerLock adapts the speaker's package-level lock to sync.Locker.
type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Player is the single owner of the live audio session. Loading a new
// source stops and releases the previous one before the new one starts.
type Player struct {
	opts     SessionOptions
	bufferMS int

	mu      sync.Mutex
	session *Session
	rate    beep.SampleRate
	initted bool
}

// NewPlayer creates a player from the audio config section.
func NewPlayer(cfg config.AudioConfig) *Player {
	vol := cfg.Volume
	if vol == 0 {
		vol = 70
	}
	return &Player{
		opts: SessionOptions{
			Analyzer: AnalyzerConfigFrom(cfg),
			RingSize: cfg.RingSize,
			Volume:   vol,
		},
		bufferMS: cfg.BufferMS,
	}
}

// Load decodes path and starts playing it. On failure the previous session
// keeps playing and the error is returned.
func (p *Player) Load(path string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.opts.Volume = p.session.Volume()
	}
	s, err := NewSession(path, p.opts, speakerLock{})
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}

	if err := p.attach(s); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("load audio: %w", err)
	}

	slog.Info("audio loaded",
		"path", path,
		"sample_rate", int(s.format.SampleRate),
		"duration_s", s.Duration().Seconds(),
	)
	return s, nil
}

// attach swaps the speaker over to s, initializing or reinitializing it when
// the sample rate changes.
func (p *Player) attach(s *Session) error {
	rate := s.format.SampleRate
	ms := p.bufferMS
	if ms <= 0 {
		ms = 50
	}
	bufferSize := rate.N(time.Duration(ms) * time.Millisecond)

	switch {
	case !p.initted:
		if err := speaker.Init(rate, bufferSize); err != nil {
			return err
		}
		p.initted = true
	case p.rate != rate:
		speaker.Clear()
		if err := speaker.Init(rate, bufferSize); err != nil {
			return err
		}
	default:
		speaker.Clear()
	}
	p.rate = rate

	if p.session != nil {
		if err := p.session.Close(); err != nil {
			slog.Warn("close previous audio session", "error", err)
		}
	}
	p.session = s
	speaker.Play(s)
	return nil
}

// Session returns the live session, or nil.
func (p *Player) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Bands returns the live band energies, or nil when nothing is playing.
func (p *Player) Bands() *field.Bands {
	s := p.Session()
	if s == nil {
		return nil
	}
	return s.Bands()
}

// Toggle flips play/pause on the live session.
func (p *Player) Toggle() (bool, error) {
	s := p.Session()
	if s == nil {
		return false, ErrNoSession
	}
	return s.Toggle(), nil
}

// SetVolume sets the volume of the live session and of later loads.
func (p *Player) SetVolume(percent float64) {
	p.mu.Lock()
	p.opts.Volume = percent
	s := p.session
	p.mu.Unlock()
	if s != nil {
		s.SetVolume(percent)
	}
}

// Volume returns the current volume percentage.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		return p.session.Volume()
	}
	return p.opts.Volume
}

// Close stops playback and releases the session.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initted {
		speaker.Clear()
	}
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	return err
}
