package physics

import (
	"math"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// spawnTime maps the clock onto the launch oscillators' phase.
func (s *Simulation) spawnTime() float64 {
	return float64(s.clock) / (10.0 * math.Pi)
}

// launchLeft drops a particle into the left half, sweeping with |cos t|.
func (s *Simulation) launchLeft() {
	t := s.spawnTime()
	halfWidth := s.opts.Width / 2
	x := (halfWidth-s.opts.Radius*2)*math.Abs(math.Cos(t)) + s.opts.Radius
	s.spawn(bowl.V(x, s.opts.Radius), launchVelocity(t))
}

// launchRight drops a particle into the right half, sweeping with |sin t|.
func (s *Simulation) launchRight() {
	t := s.spawnTime()
	halfWidth := s.opts.Width / 2
	x := (halfWidth-s.opts.Radius*2)*math.Abs(math.Sin(t)) + s.opts.Radius + halfWidth
	s.spawn(bowl.V(x, s.opts.Radius), launchVelocity(t))
}

func launchVelocity(t float64) bowl.Vec2 {
	return bowl.V(math.Cos(t), math.Abs(math.Sin(t)))
}

// spawn appends a particle whose implied first velocity is vel.
func (s *Simulation) spawn(pos, vel bowl.Vec2) {
	slot := len(s.particles)
	s.particles = append(s.particles, Particle{
		Position:     pos,
		LastPosition: pos.Sub(vel),
		Radius:       s.opts.Radius + math.Sin(float64(s.clock))*s.opts.RadiusVariance,
		Color:        s.colorFor(slot),
		Slot:         slot,
	})
}
