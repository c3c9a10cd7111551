package systems

import (
	"fmt"
	"math"
	"math/rand"
)

// Particle is a single drifting point. Age counts completed updates.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Age    int
}

// FieldSampler provides bias values at canvas positions.
// Implemented by NoiseField.
type FieldSampler interface {
	Sample(x, y float64, ch Channel) float64
}

// ParticleParams are the per-session simulation constants.
type ParticleParams struct {
	MaxAge        int     // particles are retained while Age < MaxAge
	Damping       float64 // fraction of velocity kept each update
	Influence     float64 // multiplier on field samples
	SpawnVelocity float64 // spawn velocity range per axis, [-v, v)
}

// ParticleSystem owns the live particle population in spawn order.
type ParticleSystem struct {
	particles []Particle
	params    ParticleParams
	rng       *rand.Rand

	spawned uint64
	culled  uint64
}

// NewParticleSystem creates an empty particle system.
// Negative MaxAge, NaN coefficients or a nil rng are programming errors and panic.
func NewParticleSystem(params ParticleParams, rng *rand.Rand) *ParticleSystem {
	if params.MaxAge < 0 {
		panic(fmt.Sprintf("systems: max age must not be negative, got %d", params.MaxAge))
	}
	if math.IsNaN(params.Damping) || math.IsNaN(params.Influence) || math.IsNaN(params.SpawnVelocity) {
		panic("systems: particle params must not be NaN")
	}
	if rng == nil {
		panic("systems: particle system needs a random source")
	}
	return &ParticleSystem{
		particles: make([]Particle, 0, 1024),
		params:    params,
		rng:       rng,
	}
}

// Params returns the simulation constants.
func (s *ParticleSystem) Params() ParticleParams { return s.params }

// Fuzzy returns a uniform value in [-r, r).
func Fuzzy(rng *rand.Rand, r float64) float64 {
	return (rng.Float64() - 0.5) * r * 2
}

// Spawn appends count particles at (x, y) with random velocities.
func (s *ParticleSystem) Spawn(x, y float64, count int) {
	for i := 0; i < count; i++ {
		s.particles = append(s.particles, Particle{
			X:  x,
			Y:  y,
			VX: Fuzzy(s.rng, s.params.SpawnVelocity),
			VY: Fuzzy(s.rng, s.params.SpawnVelocity),
		})
	}
	if count > 0 {
		s.spawned += uint64(count)
	}
}

// Update advances every particle one step through the field, ages it and
// drops the ones that reached MaxAge. Survivors keep their spawn order.
// Returns the number of particles removed.
func (s *ParticleSystem) Update(field FieldSampler) int {
	damping := s.params.Damping
	influence := s.params.Influence
	maxAge := s.params.MaxAge

	alive := 0
	for i := range s.particles {
		p := &s.particles[i]

		p.VX = p.VX*damping + field.Sample(p.X, p.Y, ChannelX)*influence
		p.VY = p.VY*damping + field.Sample(p.X, p.Y, ChannelY)*influence
		p.X += p.VX
		p.Y += p.VY
		p.Age++

		if p.Age >= maxAge {
			continue
		}

		s.particles[alive] = *p
		alive++
	}

	removed := len(s.particles) - alive
	s.particles = s.particles[:alive]
	s.culled += uint64(removed)
	return removed
}

// Particles returns the live population. The slice is only valid until the
// next Spawn, Update or Reset.
func (s *ParticleSystem) Particles() []Particle {
	return s.particles
}

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int {
	return len(s.particles)
}

// Reset drops every particle without counting them as culled.
func (s *ParticleSystem) Reset() {
	s.particles = s.particles[:0]
}

// Spawned returns the total number of particles ever spawned.
func (s *ParticleSystem) Spawned() uint64 { return s.spawned }

// Culled returns the total number of particles removed by aging.
func (s *ParticleSystem) Culled() uint64 { return s.culled }
