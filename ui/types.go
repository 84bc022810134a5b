// Package ui draws the viewer's control panel and heads-up display.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Highlight      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 12, G: 14, B: 24, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 90, A: 255},
		SectionHeader:  rl.Color{R: 130, G: 190, B: 255, A: 255},
		LabelColor:     rl.LightGray,
		ValueColor:     rl.RayWhite,
		BarBg:          rl.Color{R: 40, G: 40, B: 48, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 220, A: 255},
		BarFillLow:     rl.Color{R: 220, G: 90, B: 120, A: 255},  // bass
		BarFillMedium:  rl.Color{R: 120, G: 200, B: 140, A: 255}, // mid
		BarFillHigh:    rl.Color{R: 130, G: 170, B: 255, A: 255}, // high
		Highlight:      rl.Color{R: 255, G: 210, B: 90, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// ThemeOption is one selectable theme in the control panel.
type ThemeOption struct {
	ID      string
	Name    string
	Presets []PresetOption
}

// PresetOption is one selectable color preset.
type PresetOption struct {
	Key    string
	Name   string
	Swatch []rl.Color
}
