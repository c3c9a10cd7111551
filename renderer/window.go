package renderer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/game"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/ui"
)

const controlsHelp = "Drag to draw | C clear | SHIFT+C reset | S export | H hud | TAB palette | P timing | X/Y field | ESC quit"

// Host presents a session in a raylib window and drives its frame signal.
type Host struct {
	session *game.Session
	signal  *game.FrameSignal
	handler *input.Handler
	poller  *Poller

	palette  *ui.Palette
	overlays *ui.OverlayRegistry

	canvasTex *CanvasTexture
	preview   *FieldPreview
	hud       *HUD
	perfPanel *PerfPanel
	controls  *ControlsPanel

	canvasW, canvasH int
	screenW, screenH int32
	originX, originY int32
}

// NewHost builds the window-side state for session. The raylib window must
// already be open.
func NewHost(cfg *config.Config, session *game.Session, signal *game.FrameSignal, handler *input.Handler) *Host {
	w, h := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	handler.OnClick = func(x, y float64) {
		slog.Debug("canvas click", "x", x, "y", y)
	}

	return &Host{
		session:   session,
		signal:    signal,
		handler:   handler,
		poller:    NewPoller(handler),
		palette:   ui.NewPalette(cfg.Derived.Swatches, cfg.Derived.DefaultIndex),
		overlays:  ui.NewOverlayRegistry(),
		canvasTex: NewCanvasTexture(cfg.Screen.Width, cfg.Screen.Height),
		preview:   NewFieldPreview(),
		hud:       NewHUD(),
		perfPanel: NewPerfPanel(10, 100, 280),
		controls:  NewControlsPanel(w-230, 10, 220),
		canvasW:   cfg.Screen.Width,
		canvasH:   cfg.Screen.Height,
		screenW:   w,
		screenH:   h,
	}
}

// Run presents frames until the window closes or maxTicks frames have been
// simulated (0 = unlimited).
func (h *Host) Run(maxTicks int) {
	loop := h.session.Loop()
	loop.Start()
	defer loop.Stop()

	for !rl.WindowShouldClose() {
		h.Update()
		h.Draw()

		if maxTicks > 0 && int(loop.Frame()) >= maxTicks {
			slog.Info("max ticks reached", "tick", loop.Frame())
			return
		}
	}
}

// Update polls input and runs one simulation tick through the frame signal.
func (h *Host) Update() {
	h.layout()

	uiBlocked := func(x, y float32) bool {
		return h.overlays.IsEnabled(ui.OverlayControls) && h.controls.Contains(x, y)
	}
	for _, k := range h.poller.Poll(uiBlocked) {
		h.handleKey(k)
	}

	h.signal.Present()
	h.canvasTex.Upload(h.session.Loop().Canvas().Image())
}

// Draw renders the canvas, overlays and panels.
func (h *Host) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	h.canvasTex.Draw(h.originX, h.originY, rl.White)

	switch {
	case h.overlays.IsEnabled(ui.OverlayFieldX):
		h.preview.Draw(h.originX, h.originY, h.session.Field(), systems.ChannelX)
	case h.overlays.IsEnabled(ui.OverlayFieldY):
		h.preview.Draw(h.originX, h.originY, h.session.Field(), systems.ChannelY)
	}

	if h.overlays.IsEnabled(ui.OverlayHUD) {
		st := h.session.Status()
		h.hud.Draw(HUDData{
			Title:     "Drift",
			Frame:     st.Frame,
			Particles: st.Particles,
			Spawned:   st.Spawned,
			Culled:    st.Culled,
			FPS:       rl.GetFPS(),
			Style:     st.Style,
			Focused:   h.handler.HasFocus(),
			Exports:   st.Exports,
		})
		h.hud.DrawControls(h.screenH, controlsHelp)
	}

	if h.overlays.IsEnabled(ui.OverlayPerf) {
		if perf := h.session.Loop().Perf(); perf != nil {
			h.perfPanel.Draw(perf.Stats())
		}
	}

	if h.overlays.IsEnabled(ui.OverlayControls) {
		h.applyControls(h.controls.Draw(h.palette, h.overlays))
	}

	rl.EndDrawing()
}

// layout centres the canvas in the (resizable) window and keeps pointer
// coordinates canvas-local.
func (h *Host) layout() {
	sw, sh := rl.GetScreenWidth(), rl.GetScreenHeight()
	x, y := ui.CenterOffset(sw, sh, h.canvasW, h.canvasH)
	h.screenW, h.screenH = int32(sw), int32(sh)
	h.originX, h.originY = int32(x), int32(y)
	h.handler.SetOffset(float64(x), float64(y))
	h.controls.SetPosition(h.screenW-230, 10)
}

func (h *Host) applyControls(a ControlsAction) {
	if a.Toggled >= 0 && h.palette.Toggle(a.Toggled) {
		h.session.SetSwatch(h.palette.Current())
	}
	if a.Clear {
		h.session.Loop().Clear()
	}
	if a.Export {
		h.session.RequestExport()
	}
}

func (h *Host) handleKey(k input.Key) {
	if id, on, ok := h.overlays.HandleKeyPress(k); ok {
		slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		return
	}
	loop := h.session.Loop()
	switch ui.ResolveCommand(k, h.handler) {
	case ui.CommandClear:
		loop.Clear()
	case ui.CommandReset:
		loop.Particles().Reset()
		loop.Clear()
	case ui.CommandExport:
		h.session.RequestExport()
	}
}

// Unload releases GPU resources.
func (h *Host) Unload() {
	h.canvasTex.Unload()
	h.preview.Unload()
}
