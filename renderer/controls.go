package renderer

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/drift/ui"
)

// ControlsAction reports what the user clicked this frame.
type ControlsAction struct {
	Toggled int // Palette index clicked, -1 for none
	Clear   bool
	Export  bool
}

// ControlsPanel renders the palette toggles, the Clear/Export buttons and
// the overlay key legend.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Contains reports whether a screen point lies over the panel as last drawn.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, c.bounds())
}

func (c *ControlsPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height)}
}

// Draw renders the panel and returns the clicks it received.
func (c *ControlsPanel) Draw(palette *ui.Palette, overlays *ui.OverlayRegistry) ControlsAction {
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	rowHeight := int32(24)

	swatches := palette.Swatches()
	legend := overlays.All()
	c.height = padding*3 + lineHeight + int32(len(swatches))*(rowHeight+4) + rowHeight + 8 +
		lineHeight + int32(len(legend))*lineHeight

	r.DrawPanel(c.x, c.y, c.width, c.height)

	action := ControlsAction{Toggled: -1}
	x := c.x + padding
	y := c.y + padding
	inner := c.width - padding*2

	rl.DrawText("Palette", x, y, 16, rl.White)
	y += lineHeight + 4

	sel := palette.Selector()
	for i, sw := range swatches {
		r.DrawColorSwatch(x, y+5, previewColor(sw.Style.Color), "")
		bounds := rl.Rectangle{X: float32(x + 20), Y: float32(y), Width: float32(inner - 20), Height: float32(rowHeight)}
		label := fmt.Sprintf("%s (%s)", sw.Name, sw.Style.Blend)
		active := sel.IsActive(i)
		if gui.Toggle(bounds, label, active) != active {
			action.Toggled = i
		}
		y += rowHeight + 4
	}

	y += 4
	half := float32(inner-8) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: float32(rowHeight)}, "Clear") {
		action.Clear = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 8, Y: float32(y), Width: half, Height: float32(rowHeight)}, "Export") {
		action.Export = true
	}
	y += rowHeight + 8

	rl.DrawText("Overlays", x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += lineHeight
	for _, desc := range legend {
		c.drawLegendLine(x, y, desc, overlays.IsEnabled(desc.ID), inner)
		y += lineHeight
	}

	return action
}

// drawLegendLine draws a single overlay status line.
func (c *ControlsPanel) drawLegendLine(x, y int32, desc ui.OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	keyText := fmt.Sprintf("[%s]", desc.KeyLabel())
	keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
	rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
}

// previewColor brightens very dark additive colors so the swatch is
// visible, keeping their hue.
func previewColor(c color.RGBA) rl.Color {
	col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	h, s, l := col.Hsl()
	if l < 0.45 {
		l = 0.45
	}
	r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}
