// Package physics implements the falling-circle engine: the particle store
// and the solver that spawns, constrains, sorts, collides and integrates it.
//
// The engine is fully deterministic. The clock doubles as the seed and as
// elapsed time for the spawn schedule, so two simulations built from the
// same [Options] produce identical particle sequences step for step.
//
// Each outer [Simulation.Step] spawns up to two particles (one per launcher,
// while capacity remains) and then runs a fixed number of substeps:
//
//  1. clamp every position into the area bounds
//  2. insertion-sort the sequence by x (broad phase)
//  3. resolve overlaps with position-based corrections
//  4. Verlet-integrate under gravity
//  5. advance the clock
//
// A final insertion pass keeps the sequence x-ascending at every substep
// boundary.
package physics
