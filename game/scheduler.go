package game

import (
	"context"
	"sync"
	"time"
)

// Scheduler repeatedly invokes a frame callback until cancelled.
type Scheduler interface {
	// Schedule registers fn as the frame callback and returns a function that
	// unregisters it. Cancelling only prevents future invocations.
	Schedule(fn func()) (cancel func())
}

// slot holds at most one registered callback. Each registration gets a new
// generation so a stale cancel cannot remove a newer callback.
type slot struct {
	mu  sync.Mutex
	fn  func()
	gen uint64
}

func (s *slot) Schedule(fn func()) func() {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.fn = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.gen == gen {
			s.fn = nil
		}
		s.mu.Unlock()
	}
}

// fire invokes the current callback, if any, outside the lock.
func (s *slot) fire() bool {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (s *slot) scheduled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fn != nil
}

// FrameSignal is a Scheduler driven by a host's frame presentation.
// The host calls Present once per displayed frame.
type FrameSignal struct {
	slot
}

// NewFrameSignal creates an idle frame signal.
func NewFrameSignal() *FrameSignal {
	return &FrameSignal{}
}

// Present runs the scheduled callback on the calling goroutine.
// Returns false if nothing is scheduled.
func (f *FrameSignal) Present() bool {
	return f.fire()
}

// Scheduled reports whether a callback is registered.
func (f *FrameSignal) Scheduled() bool {
	return f.scheduled()
}

// DefaultInterval is the fallback timer period.
const DefaultInterval = time.Millisecond

// IntervalScheduler is a fixed-period repeating timer for hosts without a
// frame signal. Callbacks run on the goroutine that calls Run.
type IntervalScheduler struct {
	slot
	interval time.Duration
}

// NewIntervalScheduler creates a timer scheduler. Non-positive intervals use DefaultInterval.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &IntervalScheduler{interval: interval}
}

// Interval returns the timer period.
func (s *IntervalScheduler) Interval() time.Duration {
	return s.interval
}

// Run pumps the timer until ctx is done.
func (s *IntervalScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.fire()
		}
	}
}
