package palette

// Table is a theme's preset set with a declared default.
type Table struct {
	def   string
	order []string
	byKey map[string]Preset
}

// NewTable builds a table. The default key must be one of the presets.
func NewTable(def string, presets ...Preset) *Table {
	t := &Table{
		def:   def,
		byKey: make(map[string]Preset, len(presets)),
	}
	for _, p := range presets {
		t.order = append(t.order, p.Key)
		t.byKey[p.Key] = p
	}
	if _, ok := t.byKey[def]; !ok {
		panic("palette: default preset " + def + " not in table")
	}
	return t
}

// Resolve returns the preset for key. Empty or unknown keys resolve to the
// default; matched reports whether key itself was found.
func (t *Table) Resolve(key string) (p Preset, matched bool) {
	if p, ok := t.byKey[key]; ok {
		return p, true
	}
	return t.byKey[t.def], false
}

// Default returns the default preset.
func (t *Table) Default() Preset {
	return t.byKey[t.def]
}

// DefaultKey returns the default preset key.
func (t *Table) DefaultKey() string {
	return t.def
}

// Has reports whether key names a preset.
func (t *Table) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// Keys returns preset keys in declaration order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Presets returns all presets in declaration order.
func (t *Table) Presets() []Preset {
	out := make([]Preset, len(t.order))
	for i, k := range t.order {
		out[i] = t.byKey[k]
	}
	return out
}
