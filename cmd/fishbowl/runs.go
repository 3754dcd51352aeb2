package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Xterminate1818/fishbowl/internal/config"
	"github.com/Xterminate1818/fishbowl/internal/storage"
	"github.com/Xterminate1818/fishbowl/internal/viz"
)

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRADIUS\tSTEP\tLOOP")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%d\t%t\n", name, p.Radius, p.Step, p.Loop)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINPUT\tRADIUS\tCANVAS\tPARTICLES\tFRAMES\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%g\t%gx%g\t%d\t%d\t%s\n",
			r.ID, r.Input, r.Physics.Radius, r.Physics.Width, r.Physics.Height,
			r.MaxParticles, r.Frames, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return fmt.Errorf("load run %s: %w", args[0], err)
	}
	if showJSON {
		return storage.ExportJSONStdout(*meta, nil)
	}

	colors, err := st.LoadColors(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(meta.ID))
	fmt.Println(viz.Metric("input", meta.Input))
	fmt.Println(viz.Metric("seed", meta.Seed))
	fmt.Println(viz.Metric("radius", meta.Physics.Radius))
	fmt.Println(viz.Metric("canvas", fmt.Sprintf("%gx%g", meta.Physics.Width, meta.Physics.Height)))
	fmt.Println(viz.Metric("collision", meta.Physics.Collision))
	fmt.Println(viz.Metric("iterations", meta.TotalIterations))
	fmt.Println(viz.Metric("particles", meta.MaxParticles))
	if meta.Frames > 0 {
		fmt.Println(viz.Metric("frames", meta.Frames))
		fmt.Println(viz.Metric("stride", meta.Stride))
		fmt.Println(viz.Metric("backend", meta.Backend))
	}
	fmt.Println(viz.Swatches(colors, previewColumns/2))

	if len(meta.Metrics) > 0 {
		fmt.Println(viz.Separator(40))
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(viz.Metric(name, fmt.Sprintf("%.6f", meta.Metrics[name])))
		}
	}
	return nil
}
