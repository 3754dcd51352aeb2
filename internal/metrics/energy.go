package metrics

import "github.com/Xterminate1818/fishbowl/internal/physics"

// Energy is the mean kinetic energy per particle at the latest observation,
// with unit mass and velocity measured per substep.
type Energy struct {
	name    string
	current float64
	peak    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(particles []physics.Particle, clock int) {
	if len(particles) == 0 {
		e.current = 0
		return
	}
	var total float64
	for i := range particles {
		total += 0.5 * particles[i].Velocity().Len2()
	}
	e.current = total / float64(len(particles))
	if e.current > e.peak {
		e.peak = e.current
	}
}

func (e *Energy) Value() float64 { return e.current }

// Peak is the largest value observed since the last reset.
func (e *Energy) Peak() float64 { return e.peak }

func (e *Energy) Reset() {
	e.current = 0
	e.peak = 0
}
