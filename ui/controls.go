package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Slider ranges.
const (
	MinSpeed      = 0.1
	MaxSpeed      = 3.0
	MinDensity    = 0.01
	MaxDensity    = 1.0
	MaxReactivity = 1.0
	MaxVolume     = 100.0
)

// ControlState is the set of values the panel edits.
type ControlState struct {
	Theme      string
	Preset     string
	Speed      float32
	Density    float32
	Reactivity float32
	Volume     float32
	HasAudio   bool
	Playing    bool
}

// ControlResult is what happened during one Draw.
type ControlResult struct {
	State       ControlState
	TogglePlay  bool
	ResetCamera bool
	// Hovered is true while the mouse is over the panel.
	Hovered bool
}

// ControlPanel renders the left-side control surface.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	themes   []ThemeOption
}

// NewControlPanel creates a new control panel for the given themes.
func NewControlPanel(x, y, width int32, themes []ThemeOption) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		themes:   themes,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// height returns the panel height for the current layout.
func (c *ControlPanel) height() int32 {
	rows := int32((len(c.themes) + 1) / 2)
	return c.renderer.Theme.Padding*2 + 24 + // title
		18 + rows*30 + 8 + // themes
		18 + 28 + 20 + // preset
		4*38 + // sliders
		40 // buttons
}

// Draw renders the panel and returns the edited state.
func (c *ControlPanel) Draw(st ControlState) ControlResult {
	res := ControlResult{State: st}
	if !c.visible {
		return res
	}

	r := c.renderer
	pad := r.Theme.Padding
	h := c.height()
	r.DrawPanel(c.x, c.y, c.width, h)

	mouse := rl.GetMousePosition()
	res.Hovered = rl.CheckCollisionPointRec(mouse, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(h),
	})

	x := float32(c.x + pad)
	y := float32(c.y + pad)
	inner := float32(c.width - pad*2)

	rl.DrawText("Neural Visuals", int32(x), int32(y), 18, rl.White)
	y += 24

	// Theme buttons, two per row
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Theme"))
	colW := (inner - 6) / 2
	for i, opt := range c.themes {
		bx := x + float32(i%2)*(colW+6)
		by := y + float32(i/2)*30
		rect := rl.Rectangle{X: bx, Y: by, Width: colW, Height: 26}
		if gui.Button(rect, opt.Name) && opt.ID != st.Theme {
			res.State.Theme = opt.ID
			res.State.Preset = ""
		}
		if opt.ID == res.State.Theme {
			rl.DrawRectangleLinesEx(rect, 2, r.Theme.Highlight)
		}
	}
	y += float32((len(c.themes)+1)/2)*30 + 8

	// Preset cycling
	y = float32(r.DrawSectionHeader(int32(x), int32(y), "Color preset"))
	presets := c.presetsFor(res.State.Theme)
	cur := presetIndex(presets, res.State.Preset)
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 28, Height: 24}, "<") && len(presets) > 0 {
		res.State.Preset = presets[cyclePreset(len(presets), cur, -1)].Key
	}
	if gui.Button(rl.Rectangle{X: x + inner - 28, Y: y, Width: 28, Height: 24}, ">") && len(presets) > 0 {
		res.State.Preset = presets[cyclePreset(len(presets), cur, 1)].Key
	}
	cur = presetIndex(presets, res.State.Preset)
	name := "-"
	if cur >= 0 {
		name = presets[cur].Name
	}
	tw := rl.MeasureText(name, r.Theme.FontSize+2)
	rl.DrawText(name, int32(x+inner/2)-tw/2, int32(y+5), r.Theme.FontSize+2, r.Theme.ValueColor)
	y += 28
	if cur >= 0 {
		y = float32(r.DrawSwatches(int32(x), int32(y), "Anchors", presets[cur].Swatch))
	} else {
		y += float32(r.Theme.LineHeight)
	}
	y += 2

	res.State.Speed = c.slider(&y, x, inner, "Speed", fmt.Sprintf("%.2fx", st.Speed), st.Speed, MinSpeed, MaxSpeed)
	res.State.Density = c.slider(&y, x, inner, "Density", fmt.Sprintf("%.0f%%", st.Density*100), st.Density, MinDensity, MaxDensity)
	res.State.Reactivity = c.slider(&y, x, inner, "Audio reactivity", fmt.Sprintf("%.2f", st.Reactivity), st.Reactivity, 0, MaxReactivity)
	res.State.Volume = c.slider(&y, x, inner, "Volume", fmt.Sprintf("%.0f", st.Volume), st.Volume, 0, MaxVolume)

	// Transport
	playText := "Play"
	if st.Playing {
		playText = "Pause"
	}
	if !st.HasAudio {
		playText = "Drop audio file"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: inner*0.6 - 3, Height: 28}, playText) && st.HasAudio {
		res.TogglePlay = true
	}
	if gui.Button(rl.Rectangle{X: x + inner*0.6 + 3, Y: y, Width: inner*0.4 - 3, Height: 28}, "Reset view") {
		res.ResetCamera = true
	}

	return res
}

// slider draws a labelled slider and advances y.
func (c *ControlPanel) slider(y *float32, x, width float32, label, value string, v, min, max float32) float32 {
	r := c.renderer
	rl.DrawText(label, int32(x), int32(*y), r.Theme.FontSize, r.Theme.LabelColor)
	vw := rl.MeasureText(value, r.Theme.FontSize)
	rl.DrawText(value, int32(x+width)-vw, int32(*y), r.Theme.FontSize, r.Theme.ValueColor)
	*y += 16
	nv := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: width, Height: 16},
		"", "",
		v, min, max,
	)
	*y += 22
	return nv
}

func (c *ControlPanel) presetsFor(theme string) []PresetOption {
	for _, opt := range c.themes {
		if opt.ID == theme {
			return opt.Presets
		}
	}
	return nil
}

// presetIndex returns the index of key, 0 for an empty key and -1 when
// there are no presets.
func presetIndex(presets []PresetOption, key string) int {
	if len(presets) == 0 {
		return -1
	}
	for i, p := range presets {
		if p.Key == key {
			return i
		}
	}
	return 0
}

func cyclePreset(n, cur, dir int) int {
	if cur < 0 {
		cur = 0
	}
	return ((cur+dir)%n + n) % n
}
