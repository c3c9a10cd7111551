package game

import (
	"bytes"
	"image/color"
	"image/jpeg"
	"math"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/pthm-cable/drift/canvas"
	"github.com/pthm-cable/drift/input"
	"github.com/pthm-cable/drift/systems"
)

// fixedPointer reports the same state every tick.
type fixedPointer struct {
	state input.PointerState
}

func (p *fixedPointer) Pointer() input.PointerState { return p.state }

// zeroField never biases particles.
type zeroField struct{}

func (zeroField) Sample(x, y float64, ch systems.Channel) float64 { return 0 }

// countingScheduler records how often Schedule and cancel are called.
type countingScheduler struct {
	scheduled int
	cancelled int
	fn        func()
}

func (s *countingScheduler) Schedule(fn func()) func() {
	s.scheduled++
	s.fn = fn
	return func() {
		s.cancelled++
		s.fn = nil
	}
}

var ember = canvas.Style{Color: color.RGBA{R: 12, G: 2, B: 2, A: 255}, Blend: canvas.BlendLighter}

type loopFixture struct {
	loop    *Loop
	pointer *fixedPointer
	signal  *FrameSignal
}

func newLoopFixture(params systems.ParticleParams, field systems.FieldSampler) *loopFixture {
	ptr := &fixedPointer{}
	sig := NewFrameSignal()
	ps := systems.NewParticleSystem(params, rand.New(rand.NewSource(1)))
	l := NewLoop(canvas.New(64, 48), ps, field, ptr, sig,
		LoopParams{SpawnPerTick: 10, ParticleRadius: 0.5, LineWidth: 1}, ember)
	return &loopFixture{loop: l, pointer: ptr, signal: sig}
}

func defaultParticleParams() systems.ParticleParams {
	return systems.ParticleParams{MaxAge: 100, Damping: 0.8, Influence: 4, SpawnVelocity: 10}
}

func stillParams(maxAge int) systems.ParticleParams {
	return systems.ParticleParams{MaxAge: maxAge, Damping: 1, Influence: 0, SpawnVelocity: 0}
}

func TestPointerDownForThreeTicksSpawnsThirty(t *testing.T) {
	field := systems.GenerateNoiseField(64, 48, 4, rand.New(rand.NewSource(2)))
	f := newLoopFixture(defaultParticleParams(), field)
	f.pointer.state = input.PointerState{X: 32, Y: 24, Down: true}

	for i := 0; i < 3; i++ {
		f.loop.Tick(1.0 / 60)
	}

	ps := f.loop.Particles()
	if ps.Spawned() != 30 || ps.Count() != 30 {
		t.Errorf("spawned=%d count=%d, want 30 and 30", ps.Spawned(), ps.Count())
	}
	if f.loop.Frame() != 3 {
		t.Errorf("frame = %d, want 3", f.loop.Frame())
	}
}

func TestPointerUpSpawnsNothing(t *testing.T) {
	f := newLoopFixture(defaultParticleParams(), zeroField{})
	f.pointer.state = input.PointerState{X: 10, Y: 10}

	for i := 0; i < 5; i++ {
		f.loop.Tick(0.016)
	}
	if f.loop.Particles().Spawned() != 0 {
		t.Errorf("expected no spawns, got %d", f.loop.Particles().Spawned())
	}
}

func TestStartStopLifecycle(t *testing.T) {
	f := newLoopFixture(defaultParticleParams(), zeroField{})

	if f.loop.State() != StateStopped {
		t.Fatalf("new loop should be stopped, got %v", f.loop.State())
	}
	if f.signal.Present() {
		t.Error("nothing should run before Start")
	}

	f.loop.Start()
	if f.loop.State() != StateRunning || !f.signal.Scheduled() {
		t.Fatal("Start should schedule the frame callback")
	}
	f.signal.Present()
	f.signal.Present()
	if f.loop.Frame() != 2 {
		t.Errorf("frame = %d after two presents, want 2", f.loop.Frame())
	}

	f.loop.Stop()
	if f.loop.State() != StateStopped {
		t.Error("Stop should return to stopped")
	}
	if f.signal.Present() {
		t.Error("Stop should cancel the frame callback")
	}
	if f.loop.Frame() != 2 {
		t.Errorf("no ticks may run after Stop, frame = %d", f.loop.Frame())
	}
}

func TestStopWhileStoppedIsNoop(t *testing.T) {
	sched := &countingScheduler{}
	ps := systems.NewParticleSystem(defaultParticleParams(), rand.New(rand.NewSource(1)))
	l := NewLoop(canvas.New(8, 8), ps, zeroField{}, &fixedPointer{}, sched, LoopParams{}, ember)

	l.Stop()
	if sched.cancelled != 0 || l.State() != StateStopped {
		t.Error("Stop on a stopped loop must not touch the scheduler")
	}

	l.Start()
	l.Stop()
	l.Stop()
	if sched.cancelled != 1 {
		t.Errorf("cancel called %d times, want 1", sched.cancelled)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	sched := &countingScheduler{}
	ps := systems.NewParticleSystem(defaultParticleParams(), rand.New(rand.NewSource(1)))
	l := NewLoop(canvas.New(8, 8), ps, zeroField{}, &fixedPointer{}, sched, LoopParams{}, ember)

	l.Start()
	l.Start()
	if sched.scheduled != 1 {
		t.Errorf("Schedule called %d times, want 1", sched.scheduled)
	}

	// A stop/start cycle schedules again.
	l.Stop()
	l.Start()
	if sched.scheduled != 2 || l.State() != StateRunning {
		t.Errorf("restart: scheduled=%d state=%v", sched.scheduled, l.State())
	}
}

func TestFrameDeltaFromClock(t *testing.T) {
	f := newLoopFixture(defaultParticleParams(), zeroField{})
	now := time.Unix(1000, 0)
	f.loop.SetClock(func() time.Time { return now })

	var got []float64
	f.loop.OnFrame(func(info FrameInfo) { got = append(got, info.DT) })

	f.loop.Start()
	now = now.Add(16 * time.Millisecond)
	f.signal.Present()
	now = now.Add(50 * time.Millisecond)
	f.signal.Present()

	want := []float64{0.016, 0.050}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("frame %d dt = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTickDrawsSurvivors(t *testing.T) {
	f := newLoopFixture(stillParams(100), zeroField{})
	f.pointer.state = input.PointerState{X: 20.5, Y: 20.5, Down: true}

	f.loop.Tick(0.016)

	px := f.loop.Canvas().At(20, 20)
	if px.R == 0 {
		t.Fatal("expected particles drawn at the spawn point")
	}
	if px.R <= px.G || px.G != px.B {
		t.Errorf("pixel %v does not carry the style color", px)
	}
	if far := f.loop.Canvas().At(50, 40); far != (color.RGBA{A: 255}) {
		t.Errorf("untouched pixel changed to %v", far)
	}
}

func TestCanvasPersistsBetweenTicks(t *testing.T) {
	f := newLoopFixture(stillParams(2), zeroField{})
	f.pointer.state = input.PointerState{X: 10.5, Y: 10.5, Down: true}

	f.loop.Tick(0.016) // spawn, age 1, drawn
	trail := f.loop.Canvas().At(10, 10)
	if trail.R == 0 {
		t.Fatal("expected a trail after the first tick")
	}

	f.pointer.state.Down = false
	f.loop.Tick(0.016) // age 2, culled before drawing
	f.loop.Tick(0.016)

	if f.loop.Particles().Count() != 0 {
		t.Fatalf("expected population to age out, got %d", f.loop.Particles().Count())
	}
	if got := f.loop.Canvas().At(10, 10); got != trail {
		t.Errorf("trail changed from %v to %v; the canvas must not be cleared", trail, got)
	}
}

func TestClearKeepsParticles(t *testing.T) {
	f := newLoopFixture(stillParams(100), zeroField{})
	f.pointer.state = input.PointerState{X: 5, Y: 5, Down: true}
	f.loop.Tick(0.016)

	f.loop.Clear()

	img := f.loop.Canvas().Image()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 || img.Pix[i+3] != 255 {
			t.Fatalf("pixel %d not opaque black after Clear", i/4)
		}
	}
	if f.loop.Particles().Count() != 10 {
		t.Errorf("Clear must not drop particles, got %d", f.loop.Particles().Count())
	}
	if f.loop.Canvas().Blend() != canvas.BlendLighter {
		t.Error("Clear must not change the draw state")
	}
}

func TestRequestClearAppliesOnNextTick(t *testing.T) {
	f := newLoopFixture(stillParams(2), zeroField{})
	f.pointer.state = input.PointerState{X: 5.5, Y: 5.5, Down: true}
	f.loop.Tick(0.016)
	f.pointer.state.Down = false

	f.loop.RequestClear()
	if f.loop.Canvas().At(5, 5).R == 0 {
		t.Fatal("clear must wait for the next tick")
	}
	f.loop.Tick(0.016)
	if got := f.loop.Canvas().At(5, 5); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel %v after requested clear", got)
	}
}

func TestSetStyleAppliesOnNextTick(t *testing.T) {
	f := newLoopFixture(stillParams(100), zeroField{})
	frost := canvas.Style{Color: color.RGBA{R: 2, G: 6, B: 12, A: 255}, Blend: canvas.BlendSourceOver}

	f.loop.Tick(0.016)
	f.loop.SetStyle(frost)
	if f.loop.Canvas().FillColor() != ember.Color {
		t.Error("style must not change before the next tick")
	}
	f.loop.Tick(0.016)
	if f.loop.Canvas().FillColor() != frost.Color || f.loop.Canvas().Blend() != canvas.BlendSourceOver {
		t.Errorf("style not applied: color %v blend %v", f.loop.Canvas().FillColor(), f.loop.Canvas().Blend())
	}
	if f.loop.Canvas().GlobalAlpha() != 1 || f.loop.Canvas().LineWidth() != 1 {
		t.Error("tick must reset global alpha and line width")
	}
}

func TestRequestExportEncodesAfterTick(t *testing.T) {
	dir := t.TempDir()
	f := newLoopFixture(stillParams(100), zeroField{})
	exp := NewExporter(dir, 90)
	f.loop.SetExporter(exp)

	f.loop.Tick(0.016)
	if _, ok := exp.Latest(); ok {
		t.Fatal("no export without a request")
	}

	f.pointer.state = input.PointerState{X: 30, Y: 30, Down: true}
	f.loop.RequestExport()
	f.loop.Tick(0.016)

	latest, ok := exp.Latest()
	if !ok {
		t.Fatal("expected an export after the requested tick")
	}
	if latest.Frame != 2 {
		t.Errorf("export frame = %d, want 2", latest.Frame)
	}
	if _, err := os.Stat(latest.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(latest.Data))
	if err != nil {
		t.Fatalf("export is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("export size %v, want 64x48", b)
	}

	f.loop.Tick(0.016)
	if exp.Count() != 1 {
		t.Errorf("export request must be consumed, got %d exports", exp.Count())
	}
}

func TestOnFrameReportsCounts(t *testing.T) {
	f := newLoopFixture(stillParams(2), zeroField{})
	f.pointer.state = input.PointerState{X: 1, Y: 1, Down: true}

	var infos []FrameInfo
	f.loop.OnFrame(func(info FrameInfo) { infos = append(infos, info) })

	f.loop.Tick(0.1)
	f.pointer.state.Down = false
	f.loop.Tick(0.1)

	if len(infos) != 2 {
		t.Fatalf("got %d frame callbacks, want 2", len(infos))
	}
	if infos[0].Spawned != 10 || infos[0].Culled != 0 || infos[0].Particles != 10 {
		t.Errorf("first frame %+v", infos[0])
	}
	if infos[1].Spawned != 0 || infos[1].Culled != 10 || infos[1].Particles != 0 || infos[1].Frame != 2 {
		t.Errorf("second frame %+v", infos[1])
	}
}

func TestStateString(t *testing.T) {
	if StateStopped.String() != "stopped" || StateRunning.String() != "running" {
		t.Error("unexpected state names")
	}
}
