// Package calibrate runs the engine once to completion to learn where each
// particle comes to rest, then samples the input image under those resting
// positions to build the slot-indexed color table.
package calibrate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/imageio"
	"github.com/Xterminate1818/fishbowl/internal/metrics"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/progress"
	"github.com/Xterminate1818/fishbowl/internal/sequence"
)

// DefaultSettleSteps is the number of outer steps run after the last spawn.
const DefaultSettleSteps = 120

type Settings struct {
	SettleSteps int
	// Metrics are observed once per outer step.
	Metrics  []metrics.Metric
	Reporter progress.Reporter
}

type Result struct {
	// Colors is indexed by slot and has one entry per particle.
	Colors          []bowl.Color
	TotalIterations int
	MaxParticles    int
	Seed            int
	// Options reproduce the calibration run, color table included.
	Options physics.Options
	// Resting is the final layout colored by the table, in sequence order.
	Resting []bowl.Circle
	History map[string][]float64
	Elapsed time.Duration
}

// Plan hands the result to the frame sequencer.
func (r *Result) Plan() sequence.Plan {
	return sequence.Plan{
		Options:         r.Options,
		TotalIterations: r.TotalIterations,
		MaxParticles:    r.MaxParticles,
	}
}

// Steps returns the outer steps a calibration run takes: one per spawn pair
// until full, plus settling.
func Steps(maxParticles, settleSteps int) int {
	return (maxParticles+1)/2 + settleSteps
}

// Run calibrates base against img. The seed is derived from the image and
// overrides base.Seed; base.Colors is ignored.
func Run(ctx context.Context, img *imageio.RGB, base physics.Options, s Settings) (*Result, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", bowl.ErrInvalidImage)
	}
	if s.SettleSteps < 0 {
		return nil, fmt.Errorf("%w: settle steps must be non-negative, got %d", bowl.ErrParameterBounds, s.SettleSteps)
	}

	opts := base
	opts.Seed = physics.SeedFromPixels(img.Width, img.Height, img.Pix)
	opts.Colors = nil

	sim, err := physics.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create simulation: %w", err)
	}

	log := bowl.Logger()
	start := time.Now()

	rep := progress.OrNop(s.Reporter)
	rep.Start("calibrate", Steps(sim.MaxParticles(), s.SettleSteps))
	defer rep.Finish()

	for _, m := range s.Metrics {
		m.Reset()
	}
	history := make(map[string][]float64, len(s.Metrics))

	done := 0
	step := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sim.Step()
		done++
		if len(s.Metrics) > 0 {
			particles := sim.Particles()
			for _, m := range s.Metrics {
				m.Observe(particles, sim.Clock())
				history[m.Name()] = append(history[m.Name()], m.Value())
			}
		}
		rep.Update(done)
		return nil
	}

	for !sim.Full() {
		if err := step(); err != nil {
			return nil, err
		}
	}
	log.Debug("bowl filled", "particles", sim.Len(), "clock", sim.Clock())

	for i := 0; i < s.SettleSteps; i++ {
		if err := step(); err != nil {
			return nil, err
		}
	}

	particles := sim.Particles()
	colors := SampleColors(img, particles, opts.Width, opts.Height)

	resting := make([]bowl.Circle, len(particles))
	for i, p := range particles {
		resting[i] = bowl.Circle{Position: p.Position, Radius: p.Radius, Color: colors[p.Slot]}
	}

	res := &Result{
		Colors:          colors,
		TotalIterations: sim.Clock(),
		MaxParticles:    len(particles),
		Seed:            opts.Seed,
		Resting:         resting,
		History:         history,
		Elapsed:         time.Since(start),
	}
	res.Options = opts
	res.Options.Colors = colors

	sim.Reset()

	log.Info("calibration finished",
		"seed", res.Seed,
		"particles", res.MaxParticles,
		"iterations", res.TotalIterations,
		"elapsed", res.Elapsed.Round(time.Millisecond),
	)
	return res, nil
}

// SampleColors maps each particle's resting position from the simulation
// area onto the image and records the pixel under it by slot.
func SampleColors(img *imageio.RGB, particles []physics.Particle, width, height float64) []bowl.Color {
	colors := make([]bowl.Color, len(particles))
	bowl.ParallelFor(len(particles), 256, func(start, end int) {
		for i := start; i < end; i++ {
			p := particles[i]
			x := sampleIndex(p.Position.X, width, img.Width)
			y := sampleIndex(p.Position.Y, height, img.Height)
			colors[p.Slot] = img.At(x, y)
		}
	})
	return colors
}

// sampleIndex normalizes pos against extent, clamps to [0, 1] and scales to
// the nearest pixel index.
func sampleIndex(pos, extent float64, pixels int) int {
	t := pos / extent
	if !(t > 0) {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return int(math.Round(t * float64(pixels-1)))
}
