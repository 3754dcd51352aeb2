package metrics

import "github.com/Xterminate1818/fishbowl/internal/physics"

// Metric accumulates a scalar from successive particle observations.
type Metric interface {
	Name() string
	Observe(particles []physics.Particle, clock int)
	Value() float64
	Reset()
}

// Standard returns the metrics recorded during calibration.
func Standard(width, height float64) []Metric {
	return []Metric{
		NewFill(width, height),
		NewEnergy(),
		NewOverlap(),
		NewStillness(DefaultStillThreshold),
	}
}
