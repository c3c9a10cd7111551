package input

import "math"

// Scripted is a pointer that traces a Lissajous curve across the canvas,
// pressed for the first Press ticks of every Period ticks. Used by
// headless runs.
type Scripted struct {
	Width, Height float64
	Period        int
	Press         int

	tick int
}

// NewScripted creates a scripted pointer for a width x height canvas.
func NewScripted(width, height float64, period, press int) *Scripted {
	if period < 1 {
		period = 1
	}
	return &Scripted{Width: width, Height: height, Period: period, Press: press}
}

// Pointer returns the state for the current frame and advances the script.
func (s *Scripted) Pointer() PointerState {
	t := float64(s.tick) / float64(s.Period) * 2 * math.Pi
	p := PointerState{
		X:    clamp(s.Width*(0.5+0.35*math.Sin(3*t)), 0, s.Width),
		Y:    clamp(s.Height*(0.5+0.35*math.Sin(2*t+math.Pi/4)), 0, s.Height),
		Down: s.tick%s.Period < s.Press,
	}
	s.tick++
	return p
}
