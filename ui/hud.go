package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/passeth/neural-visuals-v2/field"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	ThemeName string
	Preset    string
	Count     int
	FPS       int32

	AudioName string // empty when nothing is loaded
	Playing   bool
	Position  time.Duration
	Duration  time.Duration
	Bands     *field.Bands

	Message string // transient status line, e.g. a load error
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD in the top-right corner.
func (h *HUD) Draw(data HUDData, screenWidth int32) {
	r := h.renderer
	width := int32(300)
	x := screenWidth - width - 10
	y := int32(10)
	pad := r.Theme.Padding

	r.DrawPanel(x, y, width, 10*r.Theme.LineHeight+pad*2)
	x += pad
	y += pad

	rl.DrawText(data.Title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	y = r.DrawLabelValue(x, y, "Theme", data.ThemeName)
	y = r.DrawLabelValue(x, y, "Preset", data.Preset)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d | %d fps", data.Count, data.FPS))

	audio := "none"
	if data.AudioName != "" {
		state := "paused"
		if data.Playing {
			state = "playing"
		}
		audio = fmt.Sprintf("%s (%s)", data.AudioName, state)
	}
	y = r.DrawLabelValue(x, y, "Audio", audio)
	y = r.DrawLabelValue(x, y, "Time", fmt.Sprintf("%s / %s", clock(data.Position), clock(data.Duration)))

	var b field.Bands
	if data.Bands != nil {
		b = *data.Bands
	}
	inner := width - pad*2
	y = r.DrawBar(x, y, "Bass", float32(b.Bass), inner, r.Theme.BarFillLow)
	y = r.DrawBar(x, y, "Mid", float32(b.Mid), inner, r.Theme.BarFillMedium)
	r.DrawBar(x, y, "High", float32(b.High), inner, r.Theme.BarFillHigh)

	if data.Message != "" {
		rl.DrawText(data.Message, 10, int32(rl.GetScreenHeight())-50, 16, rl.Orange)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func clock(d time.Duration) string {
	s := int(d.Seconds())
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	Total    time.Duration
	P95      time.Duration
	Budget   time.Duration
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with phases in the given order.
func (p *PerfPanel) Draw(data PerfPanelData, phases []string) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	totalColor := rl.Yellow
	if data.Budget > 0 && data.P95 > data.Budget {
		totalColor = rl.Red
	}
	rl.DrawText(fmt.Sprintf("Total: %s  p95: %s", data.Total.Round(time.Microsecond), data.P95.Round(time.Microsecond)), x, y, 14, totalColor)
	y += 16

	for _, name := range phases {
		avg, ok := data.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 60 {
			color = rl.Red
		} else if pct > 30 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
