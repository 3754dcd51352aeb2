package metrics

import (
	"math"

	"github.com/Xterminate1818/fishbowl/internal/physics"
)

// Overlap is the mean penetration depth over touching pairs. Particles must
// be x-sorted, which the engine guarantees between substeps.
type Overlap struct {
	name  string
	value float64
}

func NewOverlap() *Overlap {
	return &Overlap{name: "overlap"}
}

func (o *Overlap) Name() string { return o.name }

func (o *Overlap) Observe(particles []physics.Particle, clock int) {
	var maxR float64
	for i := range particles {
		maxR = math.Max(maxR, particles[i].Radius)
	}

	var sum float64
	var pairs int
	for i := range particles {
		a := particles[i]
		for j := i + 1; j < len(particles); j++ {
			b := particles[j]
			if b.Position.X-a.Position.X > a.Radius+maxR {
				break
			}
			contact := a.Radius + b.Radius
			d := a.Position.Sub(b.Position).Len()
			if d < contact {
				sum += contact - d
				pairs++
			}
		}
	}

	if pairs == 0 {
		o.value = 0
		return
	}
	o.value = sum / float64(pairs)
}

func (o *Overlap) Value() float64 { return o.value }

func (o *Overlap) Reset() { o.value = 0 }
