package metrics

import (
	"math"

	"github.com/Xterminate1818/fishbowl/internal/physics"
)

// Fill is the fraction of the area covered by circle area, ignoring overlap.
type Fill struct {
	name  string
	area  float64
	value float64
}

func NewFill(width, height float64) *Fill {
	return &Fill{name: "fill", area: width * height}
}

func (f *Fill) Name() string { return f.name }

func (f *Fill) Observe(particles []physics.Particle, clock int) {
	if f.area <= 0 {
		return
	}
	var covered float64
	for i := range particles {
		r := particles[i].Radius
		covered += math.Pi * r * r
	}
	f.value = covered / f.area
}

func (f *Fill) Value() float64 { return f.value }

func (f *Fill) Reset() { f.value = 0 }
