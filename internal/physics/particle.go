package physics

import "github.com/Xterminate1818/fishbowl/internal/bowl"

// Particle is one circle in the store. Velocity is implicit:
// Position - LastPosition.
type Particle struct {
	Position     bowl.Vec2
	LastPosition bowl.Vec2
	Radius       float64
	Color        bowl.Color
	// Slot is the creation index. It never changes and is the only key
	// into the color table.
	Slot int
}

// Velocity returns the implied per-substep velocity.
func (p Particle) Velocity() bowl.Vec2 {
	return p.Position.Sub(p.LastPosition)
}

func (p Particle) Circle() bowl.Circle {
	return bowl.Circle{Position: p.Position, Radius: p.Radius, Color: p.Color}
}

// Phase identifies a stage of a substep.
type Phase int

const (
	PhaseConstrain Phase = iota
	PhaseSort
	PhaseCollide
	PhaseIntegrate
)

func (p Phase) String() string {
	switch p {
	case PhaseConstrain:
		return "constrain"
	case PhaseSort:
		return "sort"
	case PhaseCollide:
		return "collide"
	case PhaseIntegrate:
		return "integrate"
	default:
		return "unknown"
	}
}

// Observer is notified after every phase of every substep. The particle
// slice belongs to the simulation and must not be retained or modified.
type Observer interface {
	OnPhase(phase Phase, clock int, particles []Particle)
}

// CollisionMode selects which radii form the contact distance of a pair.
type CollisionMode int

const (
	// CollisionInstigator uses the scanning particle's radius for both
	// members of the pair.
	CollisionInstigator CollisionMode = iota
	// CollisionPair uses the sum of both particles' radii.
	CollisionPair
)

func (m CollisionMode) String() string {
	switch m {
	case CollisionInstigator:
		return "instigator"
	case CollisionPair:
		return "pair"
	default:
		return "unknown"
	}
}

// ParseCollisionMode maps a config name to a mode.
func ParseCollisionMode(name string) (CollisionMode, bool) {
	switch name {
	case "", "instigator":
		return CollisionInstigator, true
	case "pair":
		return CollisionPair, true
	default:
		return 0, false
	}
}
