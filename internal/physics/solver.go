package physics

import (
	"math"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// constrain clamps each position into [radius, bound-radius] on both axes.
func (s *Simulation) constrain() {
	w, h := s.opts.Width, s.opts.Height
	for i := range s.particles {
		p := &s.particles[i]
		p.Position.X = clamp(p.Position.X, p.Radius, w-p.Radius)
		p.Position.Y = clamp(p.Position.Y, p.Radius, h-p.Radius)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// sort restores x-ascending order with a stable insertion sort. Positions
// move little between substeps, so the input is nearly sorted and the pass
// runs in close to linear time.
func (s *Simulation) sort() {
	ps := s.particles
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Position.X <= ps[i].Position.X {
			continue
		}
		p := ps[i]
		j := i
		for j > 0 && ps[j-1].Position.X > p.Position.X {
			ps[j] = ps[j-1]
			j--
		}
		ps[j] = p
	}
}

// maxRadius bounds every radius the spawner can produce.
func (s *Simulation) maxRadius() float64 {
	return s.opts.Radius + s.opts.RadiusVariance
}

// collide pushes overlapping pairs apart along their center line, splitting
// the correction evenly. The sequence must be x-sorted: once a candidate
// lies beyond the reach of particle i, no later candidate can touch it.
func (s *Simulation) collide() {
	ps := s.particles
	reach := s.maxRadius()
	pair := s.opts.Collision == CollisionPair
	half := 0.5 * s.opts.Response

	for i := range ps {
		a := &ps[i]
		for j := i + 1; j < len(ps); j++ {
			b := &ps[j]

			var contact, scan float64
			if pair {
				contact = a.Radius + b.Radius
				scan = a.Radius + reach
			} else {
				contact = a.Radius + a.Radius
				scan = contact
			}

			if a.Position.X < b.Position.X-scan {
				break
			}
			if math.Abs(a.Position.Y-b.Position.Y) >= contact {
				continue
			}

			d := a.Position.Sub(b.Position)
			dist2 := d.Len2()
			if dist2 >= contact*contact || dist2 == 0 {
				continue
			}

			dist := math.Sqrt(dist2)
			n := d.Scale(1 / dist)
			delta := half * (dist - contact)
			a.Position = a.Position.Sub(n.Scale(delta * 0.5))
			b.Position = b.Position.Add(n.Scale(delta * 0.5))
		}
	}
}

// integrate applies one Verlet step with gravity on the y axis.
func (s *Simulation) integrate() {
	dt := s.opts.Timescale / float64(s.opts.Substeps)
	g := bowl.V(0, s.opts.Gravity*dt*dt)
	for i := range s.particles {
		p := &s.particles[i]
		v := p.Position.Sub(p.LastPosition)
		p.LastPosition = p.Position
		p.Position = p.Position.Add(v).Add(g)
	}
}
