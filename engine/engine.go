// Package engine drives a theme frame by frame: it owns the current base
// field, regenerates it on parameter changes and produces render buffers on
// every tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/passeth/neural-visuals-v2/field"
	"github.com/passeth/neural-visuals-v2/themes"
)

// ErrNoField is returned by Tick before a theme has been activated.
var ErrNoField = errors.New("engine: no field (no theme activated)")

// State is the engine lifecycle state.
type State int

const (
	Idle       State = iota // no field
	FieldReady              // base field built, ticks produce frames
)

func (s State) String() string {
	if s == FieldReady {
		return "field_ready"
	}
	return "idle"
}

// Options configures an Engine.
type Options struct {
	Workers           int // 0 = GOMAXPROCS
	ParallelThreshold int // 0 = default
}

// active pairs a field with the descriptor that built it so a tick never
// sees one without the other.
type active struct {
	desc  *themes.Descriptor
	field *field.Field
}

// Engine is the frame loop core. Setters may be called from any goroutine;
// Tick must be called from the render loop only.
type Engine struct {
	reg *themes.Registry

	mu     sync.Mutex // guards params
	params field.VisualParams

	current atomic.Pointer[active]

	// Render loop state, touched only by Tick
	rb          field.RenderBuffers
	transform   field.Transform
	transformOf *field.Field
	lastElapsed float64
	ticked      bool

	pool *pool
}

// New creates an idle engine.
func New(reg *themes.Registry, opts Options) *Engine {
	return &Engine{
		reg:       reg,
		params:    field.DefaultParams(),
		transform: field.Identity(),
		pool:      newPool(opts.Workers, opts.ParallelThreshold),
	}
}

// State returns Idle until the first successful activation.
func (e *Engine) State() State {
	if e.current.Load() == nil {
		return Idle
	}
	return FieldReady
}

// Params returns the current parameters.
func (e *Engine) Params() field.VisualParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// CurrentField returns the published base field, or nil when idle.
func (e *Engine) CurrentField() *field.Field {
	if a := e.current.Load(); a != nil {
		return a.field
	}
	return nil
}

// Descriptor returns the active theme, or nil when idle.
func (e *Engine) Descriptor() *themes.Descriptor {
	if a := e.current.Load(); a != nil {
		return a.desc
	}
	return nil
}

// Activate switches to a theme and builds its field.
func (e *Engine) Activate(themeID string) error {
	return e.SetTheme(themeID)
}

// SetParams applies a full parameter set. The base field is rebuilt only when
// theme, density, preset or seed changed; an unknown theme leaves the engine
// untouched.
func (e *Engine) SetParams(p field.VisualParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(p)
}

// SetTheme changes the theme.
func (e *Engine) SetTheme(id string) error {
	return e.update(func(p *field.VisualParams) { p.Theme = id })
}

// SetDensity changes the density. Out-of-range values are clamped.
func (e *Engine) SetDensity(d float64) error {
	return e.update(func(p *field.VisualParams) { p.Density = d })
}

// SetColorPreset changes the preset. Unknown keys fall back to the theme default.
func (e *Engine) SetColorPreset(key string) error {
	return e.update(func(p *field.VisualParams) { p.ColorPreset = key })
}

// SetSpeed changes the animation speed for subsequent ticks.
func (e *Engine) SetSpeed(s float64) error {
	return e.update(func(p *field.VisualParams) { p.Speed = s })
}

// SetAudioReactivity changes the audio scale for subsequent ticks.
func (e *Engine) SetAudioReactivity(r float64) error {
	return e.update(func(p *field.VisualParams) { p.AudioReactivity = r })
}

func (e *Engine) update(fn func(p *field.VisualParams)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.params
	fn(&p)
	return e.applyLocked(p)
}

func (e *Engine) applyLocked(p field.VisualParams) error {
	p = p.Normalized()
	if p.Theme == "" {
		e.params = p
		return nil
	}

	desc, err := e.reg.Get(p.Theme)
	if err != nil {
		return err
	}
	p.Theme = desc.ID

	cur := e.current.Load()
	if cur != nil && !e.params.NeedsRegen(p) {
		e.params = p
		return nil
	}

	preset, matched := desc.ResolvePreset(p.ColorPreset)
	if p.ColorPreset != "" && !matched {
		slog.Debug("unknown color preset, using theme default",
			"theme", desc.ID, "requested", p.ColorPreset, "preset", preset.Key)
	}

	// Build the new field completely before publishing it.
	f := desc.Generate(p)
	e.current.Store(&active{desc: desc, field: f})
	e.params = p

	slog.Info("field generated",
		"theme", desc.ID,
		"preset", f.Preset,
		"density", f.Density,
		"count", f.Count,
		"seed", f.Seed,
	)
	return nil
}

// Tick produces the render buffers for elapsed seconds since the loop
// started. The returned buffers are reused by the next tick.
func (e *Engine) Tick(elapsed float64, bands *field.Bands) (*field.RenderBuffers, error) {
	a := e.current.Load()
	if a == nil {
		return nil, ErrNoField
	}
	params := e.Params()
	desc, f := a.desc, a.field

	if !f.Valid() {
		return nil, fmt.Errorf("engine: invalid field for %s (count %d)", desc.ID, f.Count)
	}

	fs := desc.State(elapsed, bands, params)
	e.rb.Ensure(f.Count)
	e.pool.run(f.Count, func(lo, hi int) {
		desc.Variant.Frame(f, &e.rb, lo, hi, fs)
	})

	// A theme change restarts the aggregate transform; density and preset
	// changes keep it so the field does not snap back.
	if e.transformOf == nil || e.transformOf.Theme != f.Theme {
		e.transform = field.Identity()
	}
	e.transformOf = f

	dt := 0.0
	if e.ticked && elapsed > e.lastElapsed {
		dt = elapsed - e.lastElapsed
	}
	e.lastElapsed = elapsed
	e.ticked = true

	desc.Variant.Orient(&e.transform, fs, params.Speed*dt*60)
	e.rb.Transform = e.transform
	return &e.rb, nil
}

// Close stops the worker pool. The engine must not be ticked afterwards.
func (e *Engine) Close() {
	e.pool.stop()
}
