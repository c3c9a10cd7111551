// Package game runs the per-frame particle loop and the session around it.
package game

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/drift/canvas"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/telemetry"
)

// State is the render loop lifecycle state.
type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// LoopParams are the per-session drawing constants.
type LoopParams struct {
	SpawnPerTick   int
	ParticleRadius float64
	LineWidth      float64
}

// FrameInfo describes one completed tick.
type FrameInfo struct {
	Frame     uint64
	DT        float64 // Seconds since the previous tick
	Spawned   int
	Culled    int
	Particles int
}

// Loop drives spawning, updating and drawing once per scheduled frame.
// Everything except RequestExport and RequestClear must be called from the
// goroutine that pumps the scheduler.
type Loop struct {
	canvas    *canvas.Canvas
	particles *systems.ParticleSystem
	field     systems.FieldSampler
	pointer   input.Source
	scheduler Scheduler
	params    LoopParams

	style canvas.Style

	state  State
	cancel func()
	frame  uint64
	last   time.Time
	now    func() time.Time

	exportRequested atomic.Bool
	clearRequested  atomic.Bool

	exporter *Exporter
	perf     *telemetry.PerfCollector
	onFrame  func(FrameInfo)
}

// NewLoop creates a stopped loop.
func NewLoop(c *canvas.Canvas, particles *systems.ParticleSystem, field systems.FieldSampler,
	pointer input.Source, sched Scheduler, params LoopParams, style canvas.Style) *Loop {
	return &Loop{
		canvas:    c,
		particles: particles,
		field:     field,
		pointer:   pointer,
		scheduler: sched,
		params:    params,
		style:     style,
		now:       time.Now,
		perf:      telemetry.NewPerfCollector(60),
	}
}

// SetClock replaces the time source used for frame deltas.
func (l *Loop) SetClock(now func() time.Time) { l.now = now }

// SetExporter sets where requested exports go. Nil disables exports.
func (l *Loop) SetExporter(e *Exporter) { l.exporter = e }

// SetPerfCollector replaces the frame profiler.
func (l *Loop) SetPerfCollector(p *telemetry.PerfCollector) { l.perf = p }

// OnFrame sets a callback invoked at the end of every tick.
func (l *Loop) OnFrame(fn func(FrameInfo)) { l.onFrame = fn }

// Start schedules the frame callback. Starting a running loop is a no-op.
func (l *Loop) Start() {
	if l.state == StateRunning {
		return
	}
	l.state = StateRunning
	l.last = l.now()
	l.cancel = l.scheduler.Schedule(l.step)
	slog.Info("loop started", "frame", l.frame, "particles", l.particles.Count())
}

// Stop cancels the frame callback. Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	if l.state == StateStopped {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = StateStopped
	slog.Info("loop stopped", "frame", l.frame, "particles", l.particles.Count())
}

// State returns the lifecycle state.
func (l *Loop) State() State { return l.state }

// Frame returns the number of completed ticks.
func (l *Loop) Frame() uint64 { return l.frame }

// Canvas returns the drawing surface.
func (l *Loop) Canvas() *canvas.Canvas { return l.canvas }

// Particles returns the particle system.
func (l *Loop) Particles() *systems.ParticleSystem { return l.particles }

// Perf returns the frame profiler.
func (l *Loop) Perf() *telemetry.PerfCollector { return l.perf }

// Style returns the style used for the next tick.
func (l *Loop) Style() canvas.Style { return l.style }

// SetStyle changes the draw style starting with the next tick.
func (l *Loop) SetStyle(s canvas.Style) { l.style = s }

// Clear fills the canvas with opaque black. Particles are kept.
func (l *Loop) Clear() {
	l.canvas.Clear()
	slog.Debug("canvas cleared", "frame", l.frame)
}

// RequestExport asks the loop to encode the canvas at the end of the next
// tick. Safe to call from any goroutine.
func (l *Loop) RequestExport() { l.exportRequested.Store(true) }

// RequestClear asks the loop to clear the canvas at the start of the next
// tick. Safe to call from any goroutine.
func (l *Loop) RequestClear() { l.clearRequested.Store(true) }

// step is the scheduled callback.
func (l *Loop) step() {
	now := l.now()
	dt := now.Sub(l.last).Seconds()
	l.last = now
	l.Tick(dt)
}

// Tick runs one frame: spawn at the pointer while it is down, advance the
// population through the field and draw every survivor. The canvas is
// never cleared between ticks.
func (l *Loop) Tick(dt float64) {
	l.perf.StartTick()
	l.perf.RecordFrame()

	if l.clearRequested.Swap(false) {
		l.Clear()
	}

	l.perf.StartPhase(telemetry.PhaseSpawn)
	spawned := 0
	if p := l.pointer.Pointer(); p.Down && l.params.SpawnPerTick > 0 {
		l.particles.Spawn(p.X, p.Y, l.params.SpawnPerTick)
		spawned = l.params.SpawnPerTick
	}

	l.canvas.ApplyStyle(l.style)
	l.canvas.SetLineWidth(l.params.LineWidth)
	l.canvas.SetGlobalAlpha(1)

	l.perf.StartPhase(telemetry.PhaseUpdate)
	culled := l.particles.Update(l.field)

	l.perf.StartPhase(telemetry.PhaseDraw)
	r := l.params.ParticleRadius
	for _, p := range l.particles.Particles() {
		l.canvas.FillCircle(p.X, p.Y, r)
	}

	l.frame++

	if l.exportRequested.Swap(false) {
		l.perf.StartPhase(telemetry.PhaseExport)
		l.export()
	}
	l.perf.EndTick()

	if l.onFrame != nil {
		l.onFrame(FrameInfo{
			Frame:     l.frame,
			DT:        dt,
			Spawned:   spawned,
			Culled:    culled,
			Particles: l.particles.Count(),
		})
	}
}

func (l *Loop) export() {
	if l.exporter == nil {
		slog.Warn("export requested but no exporter configured", "frame", l.frame)
		return
	}
	if _, err := l.exporter.Export(l.canvas, l.frame); err != nil {
		slog.Error("export failed", "frame", l.frame, "error", err)
	}
}
