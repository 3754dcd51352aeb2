package physics

import (
	"fmt"
	"math"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

const (
	DefaultSubsteps  = 8
	DefaultTimescale = 1.0 / 60.0
	DefaultResponse  = 0.9

	// DefaultVarianceRatio is the spawn radius variance as a fraction of
	// the base radius.
	DefaultVarianceRatio = 0.1

	// packingFactor scales the area-based capacity down to avoid overpacking.
	packingFactor = 0.9
)

// Options fully determine a simulation. Two simulations built from equal
// Options evolve identically.
type Options struct {
	Width, Height  float64
	Radius         float64
	RadiusVariance float64
	Seed           int
	Substeps       int
	Timescale      float64
	Gravity        float64
	Response       float64
	Collision      CollisionMode
	// Colors is the slot-indexed color table. Nil during calibration.
	Colors []bowl.Color
}

// DefaultOptions returns the reference tuning for a width x height area.
// Gravity scales with height so larger canvases fall proportionally faster.
func DefaultOptions(width, height, radius float64, seed int) Options {
	return Options{
		Width:          width,
		Height:         height,
		Radius:         radius,
		RadiusVariance: radius * DefaultVarianceRatio,
		Seed:           seed,
		Substeps:       DefaultSubsteps,
		Timescale:      DefaultTimescale,
		Gravity:        height,
		Response:       DefaultResponse,
		Collision:      CollisionInstigator,
	}
}

// Capacity returns the particle budget for an area: the number of base
// circles that fit by area, scaled by the packing factor.
func Capacity(width, height, radius float64) int {
	area := width * height
	circleArea := radius * radius * math.Pi
	return int(math.Round(area/circleArea) * packingFactor)
}

type Simulation struct {
	opts         Options
	particles    []Particle
	colors       []bowl.Color
	maxParticles int
	clock        int
	observers    []Observer
}

func New(opts Options) (*Simulation, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	maxParticles := Capacity(opts.Width, opts.Height, opts.Radius)
	var colors []bowl.Color
	if opts.Colors != nil {
		colors = make([]bowl.Color, len(opts.Colors))
		copy(colors, opts.Colors)
	}
	return &Simulation{
		opts:         opts,
		particles:    make([]Particle, 0, maxParticles),
		colors:       colors,
		maxParticles: maxParticles,
		clock:        opts.Seed,
	}, nil
}

func validateOptions(opts Options) error {
	if !(opts.Width > 0) || !(opts.Height > 0) {
		return fmt.Errorf("%w: area must be positive, got %gx%g", bowl.ErrParameterBounds, opts.Width, opts.Height)
	}
	if !(opts.Radius > 0) {
		return fmt.Errorf("%w: radius must be positive, got %g", bowl.ErrParameterBounds, opts.Radius)
	}
	if opts.RadiusVariance < 0 || opts.RadiusVariance >= opts.Radius {
		return fmt.Errorf("%w: radius variance must be in [0, radius), got %g", bowl.ErrParameterBounds, opts.RadiusVariance)
	}
	if opts.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", bowl.ErrParameterBounds, opts.Substeps)
	}
	if !(opts.Timescale > 0) {
		return fmt.Errorf("%w: timescale must be positive, got %g", bowl.ErrParameterBounds, opts.Timescale)
	}
	if opts.Seed < 0 {
		return fmt.Errorf("%w: seed must be non-negative, got %d", bowl.ErrParameterBounds, opts.Seed)
	}
	return nil
}

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Options() Options  { return s.opts }
func (s *Simulation) Clock() int        { return s.clock }
func (s *Simulation) Len() int          { return len(s.particles) }
func (s *Simulation) MaxParticles() int { return s.maxParticles }
func (s *Simulation) Substeps() int     { return s.opts.Substeps }

// Full reports whether the spawn budget is exhausted.
func (s *Simulation) Full() bool { return len(s.particles) >= s.maxParticles }

// Particles returns a copy of the store in its current (x-sorted) order.
func (s *Simulation) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Snapshot returns one circle per live particle in sequence order, colored
// through the color table by slot.
func (s *Simulation) Snapshot() []bowl.Circle {
	circles := make([]bowl.Circle, len(s.particles))
	for i := range s.particles {
		p := &s.particles[i]
		circles[i] = bowl.Circle{
			Position: p.Position,
			Radius:   p.Radius,
			Color:    s.colorFor(p.Slot),
		}
	}
	return circles
}

// Reset clears the store and rewinds the clock to the seed. The color table
// is kept.
func (s *Simulation) Reset() {
	s.particles = s.particles[:0]
	s.clock = s.opts.Seed
}

// Step advances one outer step: spawn while capacity remains, then run the
// configured number of substeps.
func (s *Simulation) Step() {
	if !s.Full() {
		s.launchLeft()
	}
	if !s.Full() {
		s.launchRight()
	}

	for i := 0; i < s.opts.Substeps; i++ {
		s.constrain()
		s.notify(PhaseConstrain)
		s.sort()
		s.notify(PhaseSort)
		s.collide()
		s.notify(PhaseCollide)
		s.integrate()
		s.notify(PhaseIntegrate)
		s.clock++
		s.sort()
	}
}

func (s *Simulation) Steps(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func (s *Simulation) colorFor(slot int) bowl.Color {
	if slot < len(s.colors) {
		return s.colors[slot]
	}
	return bowl.White
}

func (s *Simulation) notify(phase Phase) {
	for _, o := range s.observers {
		o.OnPhase(phase, s.clock, s.particles)
	}
}
