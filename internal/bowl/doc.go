// Package bowl provides the primitives shared by every fishbowl stage.
//
// The pipeline turns a still image into an animated sequence:
//
//   - [physics]: deterministic falling-circle simulation
//   - [calibrate]: a throwaway run that assigns a color to every slot
//   - [render]: rasterizes [Circle] snapshots into RGBA frames
//   - [sequence]: drives the real run and collects frames in order
//
// This package holds the value types those stages exchange ([Vec2],
// [Color], [Circle]), the domain errors, [ParallelFor], and the shared
// structured logger.
//
// # Example
//
//	opts := physics.DefaultOptions(512, 512, 8, 0)
//	res, _ := calibrate.Run(ctx, img, opts, calibrate.Settings{SettleSteps: calibrate.DefaultSettleSteps})
//	r, _ := render.New(render.KindAuto, 512, 512, res.MaxParticles)
//	frames, _ := sequence.Run(ctx, r, res.Plan(), 20, nil)
//
// # Thread Safety
//
// Values in this package are plain data. [SetLogger] and [Logger] are safe
// for concurrent use.
//
// [physics]: github.com/Xterminate1818/fishbowl/internal/physics
// [calibrate]: github.com/Xterminate1818/fishbowl/internal/calibrate
// [render]: github.com/Xterminate1818/fishbowl/internal/render
// [sequence]: github.com/Xterminate1818/fishbowl/internal/sequence
package bowl
