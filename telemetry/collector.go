package telemetry

import (
	"math"

	"github.com/pthm-cable/drift/systems"
)

// Collector accumulates frame events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartFrame uint64
	windowElapsed    float64
	totalElapsed     float64

	// Event counters for current window
	frames  int
	spawned int
	culled  int

	// Reused between flushes
	speeds []float64
	ages   []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how many seconds of frame time each window covers.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordFrame records one rendered frame.
func (c *Collector) RecordFrame(dt float64, spawned, culled int) {
	c.frames++
	c.spawned += spawned
	c.culled += culled
	if dt > 0 && !math.IsInf(dt, 0) {
		c.windowElapsed += dt
		c.totalElapsed += dt
	}
}

// ShouldFlush returns true once the window has covered its duration.
func (c *Collector) ShouldFlush() bool {
	return c.windowElapsed >= c.windowDurationSec
}

// Flush produces a WindowStats and resets counters for the next window.
// particles is the live population; width and height bound the visible area.
func (c *Collector) Flush(currentFrame uint64, particles []systems.Particle, width, height int) WindowStats {
	c.speeds = c.speeds[:0]
	c.ages = c.ages[:0]
	offscreen := 0
	for _, p := range particles {
		c.speeds = append(c.speeds, math.Hypot(p.VX, p.VY))
		c.ages = append(c.ages, float64(p.Age))
		if p.X < 0 || p.Y < 0 || p.X >= float64(width) || p.Y >= float64(height) {
			offscreen++
		}
	}
	speed := Summarize(c.speeds)
	age := Summarize(c.ages)

	var fps, meanDT float64
	if c.frames > 0 {
		meanDT = c.windowElapsed / float64(c.frames)
	}
	if c.windowElapsed > 0 {
		fps = float64(c.frames) / c.windowElapsed
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		ElapsedSec:       c.totalElapsed,

		Frames: c.frames,
		FPS:    fps,
		MeanDT: meanDT,

		Particles: len(particles),
		Offscreen: offscreen,

		Spawned: c.spawned,
		Culled:  c.culled,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		AgeMean: age.Mean,
		AgeP50:  age.P50,
		AgeP90:  age.P90,
	}

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.windowElapsed = 0
	c.frames = 0
	c.spawned = 0
	c.culled = 0

	return stats
}

// WindowDuration returns the window length in seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
