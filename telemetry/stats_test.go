package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/drift/systems"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9},
		{"below range", []float64{1, 2, 3}, -0.5, 1},
		{"above range", []float64{1, 2, 3}, 1.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{4, 2, 8, 6}
	d := Summarize(values)

	if math.Abs(d.Mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", d.Mean)
	}
	// Population variance of {2,4,6,8} is 5.
	if math.Abs(d.Std-math.Sqrt(5)) > 1e-9 {
		t.Errorf("std = %v, want %v", d.Std, math.Sqrt(5))
	}
	if d.P50 != 4 || d.P90 != 8 {
		t.Errorf("p50=%v p90=%v, want 4 and 8", d.P50, d.P90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if d := Summarize(nil); d != (Distribution{}) {
		t.Errorf("empty sample should summarize to zeros, got %+v", d)
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(0.5)

	for i := 0; i < 4; i++ {
		c.RecordFrame(0.1, 10, 2)
	}
	if c.ShouldFlush() {
		t.Fatal("0.4s of frames should not fill a 0.5s window")
	}
	c.RecordFrame(0.1, 10, 2)
	if !c.ShouldFlush() {
		t.Fatal("0.5s of frames should fill the window")
	}

	particles := []systems.Particle{
		{X: 1, Y: 1, VX: 3, VY: 4, Age: 2},
		{X: -1, Y: 1, VX: 0, VY: 1, Age: 4},
		{X: 5, Y: 20, VX: 6, VY: 8, Age: 6},
	}
	s := c.Flush(42, particles, 10, 10)

	if s.Frames != 5 || s.Spawned != 50 || s.Culled != 10 {
		t.Errorf("frames=%d spawned=%d culled=%d", s.Frames, s.Spawned, s.Culled)
	}
	if math.Abs(s.FPS-10) > 1e-9 || math.Abs(s.MeanDT-0.1) > 1e-9 {
		t.Errorf("fps=%v mean_dt=%v, want 10 and 0.1", s.FPS, s.MeanDT)
	}
	if s.Particles != 3 || s.Offscreen != 2 {
		t.Errorf("particles=%d offscreen=%d, want 3 and 2", s.Particles, s.Offscreen)
	}
	if s.SpeedP50 != 5 || s.SpeedP90 != 10 {
		t.Errorf("speed p50=%v p90=%v, want 5 and 10", s.SpeedP50, s.SpeedP90)
	}
	if math.Abs(s.AgeMean-4) > 1e-9 {
		t.Errorf("age mean = %v, want 4", s.AgeMean)
	}
	if s.WindowEndFrame != 42 {
		t.Errorf("window end = %d, want 42", s.WindowEndFrame)
	}

	if c.ShouldFlush() {
		t.Error("flush should start a fresh window")
	}
	next := c.Flush(50, nil, 10, 10)
	if next.WindowStartFrame != 42 || next.Frames != 0 || next.Spawned != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if math.Abs(next.ElapsedSec-0.5) > 1e-9 {
		t.Errorf("elapsed should accumulate across windows, got %v", next.ElapsedSec)
	}
}

func TestCollectorIgnoresBadDT(t *testing.T) {
	c := NewCollector(1)
	c.RecordFrame(math.Inf(1), 0, 0)
	c.RecordFrame(-1, 0, 0)
	if c.ShouldFlush() {
		t.Error("non-finite or negative dt must not advance the window")
	}
}
