package physics

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

func newTestSim(t *testing.T, opts Options) *Simulation {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return s
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		w, h, r float64
		want    int
	}{
		{512, 512, 8, 1173},
		{64, 64, 4, 72},
		{10, 10, 100, 0},
	}

	for _, tt := range tests {
		if got := Capacity(tt.w, tt.h, tt.r); got != tt.want {
			t.Errorf("Capacity(%g, %g, %g) = %d, want %d", tt.w, tt.h, tt.r, got, tt.want)
		}
	}
}

func TestNewInvalidOptions(t *testing.T) {
	base := DefaultOptions(64, 64, 4, 0)

	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero width", func(o *Options) { o.Width = 0 }},
		{"nan height", func(o *Options) { o.Height = math.NaN() }},
		{"zero radius", func(o *Options) { o.Radius = 0 }},
		{"variance too large", func(o *Options) { o.RadiusVariance = o.Radius }},
		{"zero substeps", func(o *Options) { o.Substeps = 0 }},
		{"zero timescale", func(o *Options) { o.Timescale = 0 }},
		{"negative seed", func(o *Options) { o.Seed = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := base
			tt.mutate(&opts)
			_, err := New(opts)
			if !errors.Is(err, bowl.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestFirstStepSpawnsBothLaunchers(t *testing.T) {
	s := newTestSim(t, DefaultOptions(100, 100, 5, 0))
	s.Step()

	if s.Len() != 2 {
		t.Fatalf("expected 2 particles, got %d", s.Len())
	}
	if s.Clock() != DefaultSubsteps {
		t.Errorf("expected clock %d, got %d", DefaultSubsteps, s.Clock())
	}

	slots := map[int]bool{}
	for _, p := range s.Particles() {
		slots[p.Slot] = true
	}
	if !slots[0] || !slots[1] {
		t.Errorf("expected slots 0 and 1, got %v", slots)
	}
}

func TestSpawnPositions(t *testing.T) {
	s := newTestSim(t, DefaultOptions(100, 100, 5, 0))
	s.launchLeft()
	s.launchRight()

	left, right := s.particles[0], s.particles[1]
	if left.Position != bowl.V(45, 5) {
		t.Errorf("left launcher at %+v, want (45, 5)", left.Position)
	}
	if right.Position != bowl.V(55, 5) {
		t.Errorf("right launcher at %+v, want (55, 5)", right.Position)
	}
	if v := left.Velocity(); v != bowl.V(1, 0) {
		t.Errorf("expected launch velocity (1, 0), got %+v", v)
	}
	if left.Radius != 5 {
		t.Errorf("expected radius 5 at clock 0, got %g", left.Radius)
	}
}

func TestCollideSeparatesOverlappingPair(t *testing.T) {
	opts := DefaultOptions(100, 100, 5, 0)
	opts.RadiusVariance = 0
	s := newTestSim(t, opts)
	s.particles = []Particle{
		{Position: bowl.V(10, 10), LastPosition: bowl.V(10, 10), Radius: 5, Slot: 0},
		{Position: bowl.V(16, 10), LastPosition: bowl.V(16, 10), Radius: 5, Slot: 1},
	}

	s.collide()

	a, b := s.particles[0].Position, s.particles[1].Position
	if math.Abs(a.X-9.1) > 1e-9 || math.Abs(b.X-16.9) > 1e-9 {
		t.Errorf("expected x positions 9.1 and 16.9, got %g and %g", a.X, b.X)
	}
	if a.Y != 10 || b.Y != 10 {
		t.Errorf("expected y unchanged, got %g and %g", a.Y, b.Y)
	}

	sep := b.Sub(a).Len()
	if sep <= 6 || sep > 10 {
		t.Errorf("expected separation in (6, 10], got %g", sep)
	}
}

func TestCollideSkipsCoincidentAndDistant(t *testing.T) {
	s := newTestSim(t, DefaultOptions(100, 100, 5, 0))
	s.particles = []Particle{
		{Position: bowl.V(20, 20), Radius: 5},
		{Position: bowl.V(20, 20), Radius: 5, Slot: 1},
		{Position: bowl.V(20, 40), Radius: 5, Slot: 2},
		{Position: bowl.V(60, 20), Radius: 5, Slot: 3},
	}
	before := slices.Clone(s.particles)

	s.collide()

	if !slices.Equal(before, s.particles) {
		t.Errorf("expected no movement, got %+v", s.particles)
	}
}

func TestSortIsStableAndAscending(t *testing.T) {
	s := newTestSim(t, DefaultOptions(100, 100, 5, 0))
	xs := []float64{30, 10, 20, 10, 50, 0}
	for i, x := range xs {
		s.particles = append(s.particles, Particle{Position: bowl.V(x, 0), Slot: i})
	}

	s.sort()

	for i := 1; i < len(s.particles); i++ {
		if s.particles[i-1].Position.X > s.particles[i].Position.X {
			t.Fatalf("not sorted at %d: %+v", i, s.particles)
		}
	}
	if s.particles[1].Slot != 1 || s.particles[2].Slot != 3 {
		t.Errorf("expected equal keys to keep insertion order, got slots %d, %d",
			s.particles[1].Slot, s.particles[2].Slot)
	}
}

func TestIntegrateAppliesGravity(t *testing.T) {
	s := newTestSim(t, DefaultOptions(60, 60, 5, 0))
	s.particles = []Particle{
		{Position: bowl.V(10, 10), LastPosition: bowl.V(9, 10), Radius: 5},
	}

	s.integrate()

	dt := DefaultTimescale / DefaultSubsteps
	p := s.particles[0]
	if p.LastPosition != bowl.V(10, 10) {
		t.Errorf("expected last position (10, 10), got %+v", p.LastPosition)
	}
	if math.Abs(p.Position.X-11) > 1e-12 {
		t.Errorf("expected x 11, got %g", p.Position.X)
	}
	if math.Abs(p.Position.Y-(10+60*dt*dt)) > 1e-12 {
		t.Errorf("expected y %g, got %g", 10+60*dt*dt, p.Position.Y)
	}
}

func TestConstrainUsesOwnRadius(t *testing.T) {
	s := newTestSim(t, DefaultOptions(50, 50, 5, 0))
	s.particles = []Particle{
		{Position: bowl.V(-3, 80), Radius: 4.5},
	}

	s.constrain()

	if got := s.particles[0].Position; got != bowl.V(4.5, 45.5) {
		t.Errorf("expected (4.5, 45.5), got %+v", got)
	}
}

func TestDeterminism(t *testing.T) {
	opts := DefaultOptions(64, 64, 4, 37)
	a := newTestSim(t, opts)
	b := newTestSim(t, opts)

	a.Steps(60)
	b.Steps(60)

	if a.Clock() != b.Clock() {
		t.Fatalf("clock mismatch: %d vs %d", a.Clock(), b.Clock())
	}
	if !slices.Equal(a.Particles(), b.Particles()) {
		t.Error("expected identical particle sequences")
	}
}

func TestCollisionModesAgreeForUniformRadii(t *testing.T) {
	opts := DefaultOptions(64, 64, 4, 5)
	opts.RadiusVariance = 0
	a := newTestSim(t, opts)
	opts.Collision = CollisionPair
	b := newTestSim(t, opts)

	a.Steps(50)
	b.Steps(50)

	if !slices.Equal(a.Particles(), b.Particles()) {
		t.Error("expected instigator and pair modes to match with uniform radii")
	}
}

func TestCapacityGatesSpawning(t *testing.T) {
	s := newTestSim(t, DefaultOptions(64, 64, 4, 0))
	for i := 0; i < 80; i++ {
		s.Step()
		if s.Len() > s.MaxParticles() {
			t.Fatalf("step %d: %d particles exceeds capacity %d", i, s.Len(), s.MaxParticles())
		}
	}
	if !s.Full() {
		t.Errorf("expected bowl to be full, got %d/%d", s.Len(), s.MaxParticles())
	}
}

func TestResetReplaysFromSeed(t *testing.T) {
	opts := DefaultOptions(64, 64, 4, 11)
	s := newTestSim(t, opts)
	s.Steps(30)
	first := s.Particles()

	s.Reset()
	if s.Len() != 0 || s.Clock() != 11 {
		t.Fatalf("expected empty store at clock 11, got %d particles at %d", s.Len(), s.Clock())
	}

	s.Steps(30)
	if !slices.Equal(first, s.Particles()) {
		t.Error("expected replay after reset to match first run")
	}
}

func TestSnapshotAppliesColorTable(t *testing.T) {
	red := bowl.Color{R: 255}
	blue := bowl.Color{B: 255}
	opts := DefaultOptions(100, 100, 5, 0)
	opts.Colors = []bowl.Color{red, blue}
	s := newTestSim(t, opts)

	s.Steps(2)
	if s.Len() != 4 {
		t.Fatalf("expected 4 particles, got %d", s.Len())
	}

	bySlot := map[int]bowl.Color{}
	circles := s.Snapshot()
	for i, p := range s.Particles() {
		bySlot[p.Slot] = circles[i].Color
		if circles[i].Position != p.Position || circles[i].Radius != p.Radius {
			t.Errorf("circle %d does not match particle", i)
		}
	}
	if bySlot[0] != red || bySlot[1] != blue {
		t.Errorf("expected table colors for slots 0 and 1, got %v and %v", bySlot[0], bySlot[1])
	}
	if bySlot[2] != bowl.White || bySlot[3] != bowl.White {
		t.Errorf("expected white beyond the table, got %v and %v", bySlot[2], bySlot[3])
	}
}

func TestSnapshotEmpty(t *testing.T) {
	s := newTestSim(t, DefaultOptions(100, 100, 5, 0))
	if got := s.Snapshot(); len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d circles", len(got))
	}
}

func TestSeedFromPixels(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	a := SeedFromPixels(2, 2, pix)
	b := SeedFromPixels(2, 2, pix)
	if a != b {
		t.Errorf("expected stable seed, got %d and %d", a, b)
	}

	for w := 1; w < 20; w++ {
		seed := SeedFromPixels(w, 3, pix)
		if seed < 0 || seed >= SeedModulus {
			t.Errorf("seed %d out of range", seed)
		}
	}
}

func TestParseCollisionMode(t *testing.T) {
	tests := []struct {
		in   string
		want CollisionMode
		ok   bool
	}{
		{"", CollisionInstigator, true},
		{"instigator", CollisionInstigator, true},
		{"pair", CollisionPair, true},
		{"bogus", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCollisionMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCollisionMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
