package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Xterminate1818/fishbowl/internal/storage"
	"github.com/Xterminate1818/fishbowl/internal/viz"
)

const previewColumns = 64

func runCalibrate(cmd *cobra.Command, args []string) error {
	logger := setupLogging()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if input == "" {
		return fmt.Errorf("an input image (-i) is required")
	}

	res, err := calibrateImage(cmd.Context(), cfg, newReporter(logger))
	if err != nil {
		return err
	}
	meta := storage.FromCalibration(input, res)

	if jsonPath != "" {
		if jsonPath == "-" {
			return storage.ExportJSONStdout(meta, res.History)
		}
		if err := storage.ExportJSON(jsonPath, meta, res.History); err != nil {
			return err
		}
	}

	fmt.Println(viz.Title.Render("calibration"))
	fmt.Println(viz.Metric("seed", res.Seed))
	fmt.Println(viz.Metric("particles", res.MaxParticles))
	fmt.Println(viz.Metric("iterations", res.TotalIterations))
	fmt.Println(viz.Metric("elapsed", res.Elapsed.Round(time.Millisecond)))
	fmt.Println(viz.Swatches(res.Colors, previewColumns/2))

	if preview {
		canvas := viz.Preview(res.Resting, cfg.Width, cfg.Height, previewColumns)
		fmt.Println(viz.Panel.Render(canvas.String()))
	}

	if plot {
		names := make([]string, 0, len(res.History))
		for name := range res.History {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			data := res.History[name]
			if len(data) == 0 {
				continue
			}
			fmt.Println()
			fmt.Println(asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(name),
			))
		}
	}

	if save {
		runID, err := saveRun(meta, res.Colors)
		if err != nil {
			return err
		}
		fmt.Println(viz.Metric("run id", runID))
	}
	return nil
}
