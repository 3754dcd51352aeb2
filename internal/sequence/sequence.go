// Package sequence replays a calibrated simulation and renders every
// stride-th outer step into an ordered list of frames.
package sequence

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/progress"
	"github.com/Xterminate1818/fishbowl/internal/render"
)

// Plan is everything a replay needs from calibration. Options carries the
// seed and the color table.
type Plan struct {
	Options         physics.Options
	TotalIterations int
	MaxParticles    int
}

type Frame struct {
	Index  int
	Clock  int
	Pixels []byte
}

// FrameCount is the number of frames Run produces for a plan and stride.
func FrameCount(plan Plan, stride int) int {
	span := plan.TotalIterations - plan.Options.Seed
	perFrame := stride * plan.Options.Substeps
	if span <= 0 || perFrame <= 0 {
		return 0
	}
	return (span + perFrame - 1) / perFrame
}

// Run replays the plan from its seed. While frame N is being drawn the
// engine advances the next stride outer steps; frames are appended in
// capture order. Any render failure aborts the run with a *bowl.FrameError.
func Run(ctx context.Context, r render.Renderer, plan Plan, stride int, rep progress.Reporter) ([]Frame, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("%w: stride must be positive, got %d", bowl.ErrParameterBounds, stride)
	}

	sim, err := physics.New(plan.Options)
	if err != nil {
		return nil, fmt.Errorf("create simulation: %w", err)
	}
	if err := r.Resize(int(plan.Options.Width), int(plan.Options.Height), plan.MaxParticles); err != nil {
		return nil, fmt.Errorf("resize renderer: %w", err)
	}

	rep = progress.OrNop(rep)
	expected := FrameCount(plan, stride)
	rep.Start("render", expected)
	defer rep.Finish()

	log := bowl.Logger()
	log.Debug("sequencing frames", "renderer", r.Name(), "frames", expected, "stride", stride)

	frames := make([]Frame, 0, expected)
	for sim.Clock() < plan.TotalIterations {
		select {
		case <-ctx.Done():
			return frames, ctx.Err()
		default:
		}

		index, clock := len(frames), sim.Clock()
		circles := sim.Snapshot()

		var pixels []byte
		var g errgroup.Group
		g.Go(func() error {
			px, err := r.Draw(circles)
			if err != nil {
				return &bowl.FrameError{Frame: index, Clock: clock, Wrapped: err}
			}
			pixels = px
			return nil
		})

		sim.Steps(stride)

		if err := g.Wait(); err != nil {
			return frames, err
		}
		frames = append(frames, Frame{Index: index, Clock: clock, Pixels: pixels})
		rep.Update(len(frames))
	}

	log.Debug("frames rendered", "count", len(frames), "clock", sim.Clock())
	return frames, nil
}
