package metrics

import "github.com/Xterminate1818/fishbowl/internal/physics"

// DefaultStillThreshold is the per-substep speed below which a particle
// counts as resting.
const DefaultStillThreshold = 0.01

// Stillness is the fraction of particles moving slower than the threshold.
type Stillness struct {
	name      string
	threshold float64
	still     int
	total     int
}

func NewStillness(threshold float64) *Stillness {
	return &Stillness{
		name:      "stillness",
		threshold: threshold,
	}
}

func (s *Stillness) Name() string {
	return s.name
}

func (s *Stillness) Observe(particles []physics.Particle, clock int) {
	s.still = 0
	s.total = len(particles)
	limit := s.threshold * s.threshold
	for i := range particles {
		if particles[i].Velocity().Len2() < limit {
			s.still++
		}
	}
}

func (s *Stillness) Value() float64 {
	if s.total == 0 {
		return 1.0
	}
	return float64(s.still) / float64(s.total)
}

func (s *Stillness) Reset() {
	s.still = 0
	s.total = 0
}
