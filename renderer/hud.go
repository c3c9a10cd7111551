package renderer

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Frame     uint64
	Particles int
	Spawned   uint64
	Culled    uint64
	FPS       int32
	Style     string
	Focused   bool
	Exports   int
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

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Spawned: %d | Culled: %d", data.Particles, data.Spawned, data.Culled),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d | Style: %s | Exports: %d", data.Frame, data.FPS, data.Style, data.Exports),
		10, 55, 16, rl.LightGray,
	)

	if !data.Focused {
		rl.DrawText("Click to focus", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	phases := []string{telemetry.PhaseSpawn, telemetry.PhaseUpdate, telemetry.PhaseDraw, telemetry.PhaseExport}

	height := r.Theme.LineHeight*int32(len(phases)+2) + padding*2 + 8
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("avg %s  max %s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)),
		x, y, r.Theme.FontSize, rl.Yellow,
	)
	y += r.Theme.LineHeight

	for _, phase := range phases {
		y = r.DrawPercentBar(x, y, phase, stats.PhasePct[phase], 50, p.width-padding*2)
	}
}
