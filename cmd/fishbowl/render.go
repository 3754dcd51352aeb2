package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/calibrate"
	"github.com/Xterminate1818/fishbowl/internal/config"
	"github.com/Xterminate1818/fishbowl/internal/encode"
	"github.com/Xterminate1818/fishbowl/internal/export"
	"github.com/Xterminate1818/fishbowl/internal/imageio"
	"github.com/Xterminate1818/fishbowl/internal/metrics"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/progress"
	"github.com/Xterminate1818/fishbowl/internal/render"
	"github.com/Xterminate1818/fishbowl/internal/sequence"
	"github.com/Xterminate1818/fishbowl/internal/storage"
	"github.com/Xterminate1818/fishbowl/internal/viz"
)

func runRender(cmd *cobra.Command, args []string) error {
	logger := setupLogging()
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rep := newReporter(logger)

	var (
		plan    sequence.Plan
		meta    storage.RunMetadata
		resting []bowl.Circle
	)
	switch {
	case fromRun != "":
		m, p, err := storage.New(dataDir).LoadPlan(fromRun)
		if err != nil {
			return fmt.Errorf("load run %s: %w", fromRun, err)
		}
		meta, plan = *m, p
	case input != "":
		res, err := calibrateImage(ctx, cfg, rep)
		if err != nil {
			return err
		}
		plan = res.Plan()
		meta = storage.FromCalibration(input, res)
		resting = res.Resting
	default:
		return errors.New("an input image (-i) or a stored run (--from) is required")
	}

	width, height := int(plan.Options.Width), int(plan.Options.Height)

	r, err := render.New(cfg.RendererKind(), width, height, plan.MaxParticles)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Close()
	logger.Info("renderer ready", "backend", r.Name())

	start := time.Now()
	frames, err := sequence.Run(ctx, r, plan, cfg.Step, rep)
	if err != nil {
		return err
	}
	renderTime := time.Since(start)

	if err := writeGIF(output, frames, width, height, cfg); err != nil {
		return err
	}
	logger.Info("gif written", "path", output, "frames", len(frames))

	if svgPath != "" {
		if resting == nil {
			if resting, err = restingLayout(plan); err != nil {
				return err
			}
		}
		if err := export.SaveSVG(svgPath, resting, width, height); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		logger.Info("svg written", "path", svgPath)
	}

	meta.Frames = len(frames)
	meta.Stride = cfg.Step
	meta.Backend = r.Name()
	meta.Output = output
	meta.RenderMS = renderTime.Milliseconds()

	fmt.Println(viz.Title.Render("fishbowl"))
	fmt.Println(viz.Metric("output", output))
	fmt.Println(viz.Metric("backend", r.Name()))
	fmt.Println(viz.Metric("frames", len(frames)))
	fmt.Println(viz.Metric("particles", plan.MaxParticles))
	fmt.Println(viz.Metric("render time", renderTime.Round(time.Millisecond)))

	if save && fromRun == "" {
		runID, err := saveRun(meta, plan.Options.Colors)
		if err != nil {
			return err
		}
		fmt.Println(viz.Metric("run id", runID))
	}
	return nil
}

func calibrateImage(ctx context.Context, cfg *config.Config, rep progress.Reporter) (*calibrate.Result, error) {
	img, err := imageio.Load(input)
	if err != nil {
		return nil, err
	}

	res, err := calibrate.Run(ctx, img, cfg.PhysicsOptions(), calibrate.Settings{
		SettleSteps: cfg.SettleSteps,
		Metrics:     metrics.Standard(float64(cfg.Width), float64(cfg.Height)),
		Reporter:    rep,
	})
	if err != nil {
		return nil, fmt.Errorf("calibrate %s: %w", input, err)
	}
	return res, nil
}

func writeGIF(path string, frames []sequence.Frame, width, height int, cfg *config.Config) error {
	pix := make([][]byte, len(frames))
	for i, f := range frames {
		pix[i] = f.Pixels
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode.GIF(f, pix, width, height, cfg.Delay, cfg.Loop); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// restingLayout replays a plan to its final clock. Only stored runs need
// it; a fresh calibration already carries its layout.
func restingLayout(plan sequence.Plan) ([]bowl.Circle, error) {
	sim, err := physics.New(plan.Options)
	if err != nil {
		return nil, err
	}
	for sim.Clock() < plan.TotalIterations {
		sim.Step()
	}
	return sim.Snapshot(), nil
}

func saveRun(meta storage.RunMetadata, colors []bowl.Color) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	runID, err := st.Save(meta, colors)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}
