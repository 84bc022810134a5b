package themes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/passeth/neural-visuals-v2/palette"
)

// ErrUnknownTheme is returned when a theme id is not registered.
var ErrUnknownTheme = errors.New("unknown theme")

// Registry maps theme ids (and aliases) to descriptors.
// It centralizes theme naming so the UI, pipeline and server stay in sync.
type Registry struct {
	themes  []*Descriptor
	byID    map[string]*Descriptor
	aliases map[string]string
}

// NewRegistry creates a registry with all built-in themes.
func NewRegistry() *Registry {
	reg := &Registry{
		byID:    make(map[string]*Descriptor),
		aliases: make(map[string]string),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the built-in themes. Update this when adding themes.
func (r *Registry) registerDefaults() {
	r.Register(&Descriptor{
		ID:                "mentalfocus",
		Name:              "Mental Focus",
		Description:       "Razor-thin crystalline planes shattered by fast crossing waves",
		MaxParticles:      100000,
		Groups:            20,
		TimeScale:         0.4,
		Weights:           Weights{Bass: 0.6, Mid: 0.5, High: 1.0},
		Headroom:          mentalFocusHeadroom,
		DisplacementBound: 15.2,
		PointSize:         0.05,
		Opacity:           0.85,
		Presets:           mentalFocusPresets,
		Variant:           mentalFocus{},
	})
	r.Register(&Descriptor{
		ID:                "brainboost",
		Name:              "Brain Boost",
		Description:       "Electric arcs bursting between random poles",
		MaxParticles:      95000,
		Groups:            18,
		TimeScale:         0.4,
		Weights:           Weights{Bass: 0.7, Mid: 0.6, High: 1.2},
		Headroom:          brainBoostHeadroom,
		DisplacementBound: 22.9,
		PointSize:         0.06,
		Opacity:           0.9,
		Presets:           brainBoostPresets,
		Variant:           brainBoost{},
	})
	r.Register(&Descriptor{
		ID:                "creativeflow",
		Name:              "Creative Flow",
		Description:       "Playful rainbow ribbons weaving through each other",
		MaxParticles:      90000,
		Groups:            16,
		TimeScale:         1,
		Weights:           Weights{Bass: 0.35, Mid: 0.3, High: 0.6},
		Headroom:          creativeFlowHeadroom,
		DisplacementBound: 10.1,
		PointSize:         0.07,
		Opacity:           0.8,
		Presets:           creativeFlowPresets,
		Variant:           creativeFlow{},
	})
	r.Register(&Descriptor{
		ID:                "ocean",
		Name:              "Ocean Waves",
		Description:       "Layered night sea with a sparkling moon path",
		MaxParticles:      75000,
		Groups:            15,
		TimeScale:         1,
		Weights:           Weights{Bass: 0.25, Mid: 0.2, High: 0.6},
		Headroom:          oceanHeadroom,
		DisplacementBound: 2.5,
		PointSize:         0.07,
		Opacity:           0.75,
		Presets:           oceanPresets,
		Variant:           ocean{},
	})
	r.Register(&Descriptor{
		ID:                "zenfocus",
		Name:              "Zen Focus",
		Description:       "Slow concentric spiral ribbons",
		MaxParticles:      85000,
		Groups:            12,
		TimeScale:         1,
		Weights:           Weights{Bass: 0.2, Mid: 0.18, High: 0.4},
		Headroom:          zenFocusHeadroom,
		DisplacementBound: 5.3,
		PointSize:         0.08,
		Opacity:           0.7,
		Presets:           zenFocusPresets,
		Variant:           zenFocus{},
	})
	r.Register(&Descriptor{
		ID:                "moonlight",
		Name:              "Moonlight Particles",
		Description:       "A breathing shell of silver dust",
		MaxParticles:      50000,
		Groups:            12,
		TimeScale:         1,
		Weights:           Weights{Bass: 0.5, Mid: 0.3, High: 2.0},
		Headroom:          moonlightHeadroom,
		DisplacementBound: 1.5,
		PointSize:         0.05,
		Opacity:           0.8,
		Presets:           moonlightPresets,
		Variant:           moonlight{},
	})

	r.Alias("mental-focus", "mentalfocus")
	r.Alias("brain-boost", "brainboost")
	r.Alias("creative-flow", "creativeflow")
	r.Alias("ocean-surface", "ocean")
	r.Alias("oceanwaves", "ocean")
	r.Alias("ocean-waves", "ocean")
	r.Alias("zen-focus", "zenfocus")
	r.Alias("moonlight-particles", "moonlight")
}

// Register adds a theme to the registry.
func (r *Registry) Register(d *Descriptor) {
	r.themes = append(r.themes, d)
	r.byID[d.ID] = d
}

// Alias makes name resolve to an existing theme id.
func (r *Registry) Alias(name, id string) {
	r.aliases[name] = id
}

// Canonical returns the registered id for a name or alias.
func (r *Registry) Canonical(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := r.aliases[key]; ok {
		key = id
	}
	_, ok := r.byID[key]
	return key, ok
}

// Get returns the descriptor for a theme id or alias.
func (r *Registry) Get(id string) (*Descriptor, error) {
	key, ok := r.Canonical(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	return r.byID[key], nil
}

// Resolve maps (theme, preset) to a concrete preset, falling back to the
// theme default for empty or unknown keys. Only the theme can fail.
func (r *Registry) Resolve(themeID, presetKey string) (palette.Preset, error) {
	d, err := r.Get(themeID)
	if err != nil {
		return palette.Preset{}, err
	}
	p, _ := d.Presets.Resolve(presetKey)
	return p, nil
}

// All returns all registered themes in registration order.
func (r *Registry) All() []*Descriptor {
	return r.themes
}

// IDs returns all theme ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.themes))
	for i, d := range r.themes {
		ids[i] = d.ID
	}
	return ids
}

// Names returns display names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.themes))
	for i, d := range r.themes {
		names[i] = d.Name
	}
	return names
}
