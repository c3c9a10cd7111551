package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/drift/canvas"
	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/systems"
	"github.com/pthm-cable/drift/telemetry"
)

// Options configures a session beyond what the config file holds.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // CSV telemetry + config snapshot; empty disables
	Pointer        input.Source
	Scheduler      Scheduler
}

// Status is a point-in-time summary of a running session.
type Status struct {
	Frame     uint64  `json:"frame"`
	State     string  `json:"state"`
	Particles int     `json:"particles"`
	Spawned   uint64  `json:"spawned"`
	Culled    uint64  `json:"culled"`
	FPS       float64 `json:"fps"`
	Style     string  `json:"style"`
	Exports   int     `json:"exports"`
}

// Session owns one noise field, particle population, canvas and loop built
// from a config.
type Session struct {
	cfg  *config.Config
	seed int64

	field    *systems.NoiseField
	loop     *Loop
	exporter *Exporter
	swatch   config.Swatch

	// Telemetry
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	frameCallback func(FrameInfo)
	fps           float64

	status atomic.Pointer[Status]
}

// NewSession generates the noise field and wires a stopped loop.
func NewSession(cfg *config.Config, opts Options) (*Session, error) {
	if opts.Pointer == nil {
		return nil, fmt.Errorf("session needs a pointer source")
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("session needs a scheduler")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	field, err := NewField(cfg, rng)
	if err != nil {
		return nil, err
	}

	sim := cfg.Simulation
	particles := systems.NewParticleSystem(systems.ParticleParams{
		MaxAge:        sim.MaxAge,
		Damping:       sim.VelocityDamping,
		Influence:     sim.FieldInfluence,
		SpawnVelocity: sim.SpawnVelocity,
	}, rng)

	swatch := cfg.DefaultSwatch()
	loop := NewLoop(
		canvas.New(cfg.Screen.Width, cfg.Screen.Height),
		particles,
		field,
		opts.Pointer,
		opts.Scheduler,
		LoopParams{
			SpawnPerTick:   sim.SpawnPerTick,
			ParticleRadius: sim.ParticleRadius,
			LineWidth:      sim.LineWidth,
		},
		swatch.Style,
	)
	loop.SetPerfCollector(telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow))

	exporter := NewExporter(cfg.Export.Dir, cfg.Export.Quality)
	loop.SetExporter(exporter)

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Session{
		cfg:           cfg,
		seed:          seed,
		field:         field,
		loop:          loop,
		exporter:      exporter,
		swatch:        swatch,
		collector:     telemetry.NewCollector(statsWindow),
		outputManager: om,
		logStats:      opts.LogStats,
	}
	loop.OnFrame(s.onFrame)
	s.publish()

	slog.Info("session created",
		"seed", seed,
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"noise", cfg.Noise.Kind,
		"octaves", cfg.Noise.Octaves,
		"edge", field.Edge(),
		"style", swatch.Name,
		"output_dir", om.Dir(),
	)
	return s, nil
}

// NewField builds the noise field the config asks for at screen size.
func NewField(cfg *config.Config, rng *rand.Rand) (*systems.NoiseField, error) {
	edge, err := systems.ParseEdgePolicy(cfg.Simulation.EdgePolicy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	w, h := cfg.Screen.Width, cfg.Screen.Height
	var field *systems.NoiseField
	switch cfg.Noise.Kind {
	case "", "octave":
		field = systems.GenerateNoiseField(w, h, cfg.Noise.Octaves, rng)
	case "simplex":
		field = systems.GenerateSimplexField(w, h, cfg.Noise.Octaves, cfg.Noise.SimplexScale, rng)
	default:
		return nil, fmt.Errorf("unknown noise kind %q", cfg.Noise.Kind)
	}

	slog.Info("noise field generated",
		"kind", cfg.Noise.Kind,
		"width", w,
		"height", h,
		"octaves", cfg.Noise.Octaves,
		"took", time.Since(start),
	)
	return field.WithEdge(edge), nil
}

// Loop returns the render loop.
func (s *Session) Loop() *Loop { return s.loop }

// Field returns the noise field.
func (s *Session) Field() *systems.NoiseField { return s.field }

// Exporter returns the exporter.
func (s *Session) Exporter() *Exporter { return s.exporter }

// Seed returns the RNG seed the session was built with.
func (s *Session) Seed() int64 { return s.seed }

// Swatch returns the active draw style.
func (s *Session) Swatch() config.Swatch { return s.swatch }

// SetSwatch changes the draw style starting with the next tick.
func (s *Session) SetSwatch(sw config.Swatch) {
	if sw.Name == s.swatch.Name {
		return
	}
	s.swatch = sw
	s.loop.SetStyle(sw.Style)
	s.publish()
	slog.Info("style changed", "style", sw.Name, "blend", sw.Style.Blend)
}

// OnStats sets a callback invoked whenever a telemetry window closes.
func (s *Session) OnStats(fn func(telemetry.WindowStats)) { s.statsCallback = fn }

// OnFrame sets a callback invoked after every tick, once the status is published.
func (s *Session) OnFrame(fn func(FrameInfo)) { s.frameCallback = fn }

// Status returns the most recently published status. Safe from any goroutine.
func (s *Session) Status() Status { return *s.status.Load() }

// RequestExport asks for an export at the end of the next tick.
func (s *Session) RequestExport() { s.loop.RequestExport() }

// RequestClear asks for a canvas clear at the start of the next tick.
func (s *Session) RequestClear() { s.loop.RequestClear() }

// LatestExport returns the most recent export.
func (s *Session) LatestExport() (*Export, bool) { return s.exporter.Latest() }

// Close stops the loop and closes telemetry output.
func (s *Session) Close() error {
	s.loop.Stop()
	s.publish()
	return s.outputManager.Close()
}

func (s *Session) onFrame(info FrameInfo) {
	if info.DT > 0 {
		inst := 1 / info.DT
		if s.fps == 0 {
			s.fps = inst
		} else {
			s.fps += (inst - s.fps) * 0.1
		}
	}
	s.collector.RecordFrame(info.DT, info.Spawned, info.Culled)
	s.publish()
	s.flushTelemetry()
	if s.frameCallback != nil {
		s.frameCallback(info)
	}
}

// publish stores a fresh Status for readers on other goroutines.
func (s *Session) publish() {
	ps := s.loop.Particles()
	s.status.Store(&Status{
		Frame:     s.loop.Frame(),
		State:     s.loop.State().String(),
		Particles: ps.Count(),
		Spawned:   ps.Spawned(),
		Culled:    ps.Culled(),
		FPS:       s.fps,
		Style:     s.swatch.Name,
		Exports:   s.exporter.Count(),
	})
}
