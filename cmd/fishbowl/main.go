package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/config"
	"github.com/Xterminate1818/fishbowl/internal/progress"
)

var (
	dataDir    string
	input      string
	output     string
	step       int
	radius     float64
	loop       bool
	backend    string
	configFile string
	preset     string
	svgPath    string
	save       bool
	fromRun    string
	verbose    bool
	// calibrate
	preview  bool
	plot     bool
	jsonPath string
	// show
	showJSON bool
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fishbowl",
		Short:        "turn an image into a gif of falling circles",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runRender,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fishbowl", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addTuningFlags(rootCmd)
	rootCmd.Flags().StringVarP(&output, "output", "o", "output.gif", "output gif path")
	rootCmd.Flags().IntVarP(&step, "step", "s", config.DefaultStep, "outer steps between frames")
	rootCmd.Flags().BoolVarP(&loop, "loop", "l", false, "repeat the animation forever")
	rootCmd.Flags().StringVar(&backend, "backend", "auto", "render backend (auto, gpu, cpu)")
	rootCmd.Flags().StringVar(&svgPath, "svg", "", "also write the resting layout as svg")
	rootCmd.Flags().BoolVar(&save, "save", false, "store the calibration in the data directory")
	rootCmd.Flags().StringVar(&fromRun, "from", "", "render a stored calibration instead of an image")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "run calibration only and report the resting layout",
		Args:  cobra.NoArgs,
		RunE:  runCalibrate,
	}
	addTuningFlags(calibrateCmd)
	calibrateCmd.Flags().BoolVar(&preview, "preview", false, "print a braille preview of the resting layout")
	calibrateCmd.Flags().BoolVar(&plot, "plot", false, "plot settling metrics")
	calibrateCmd.Flags().StringVar(&jsonPath, "json", "", "write metadata and metric history as json (- for stdout)")
	calibrateCmd.Flags().BoolVar(&save, "save", false, "store the calibration in the data directory")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print metadata as json")

	rootCmd.AddCommand(calibrateCmd, presetsCmd, listCmd, showCmd)
	return rootCmd
}

// addTuningFlags registers the flags shared by render and calibrate.
func addTuningFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&input, "input", "i", "", "input image")
	cmd.Flags().Float64VarP(&radius, "radius", "r", config.DefaultRadius, "particle radius")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("loop") {
		cfg.Loop = loop
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func interactive() bool {
	return !verbose && isatty.IsTerminal(os.Stderr.Fd())
}

// setupLogging installs the process logger. With a terminal progress bar
// only warnings are logged so the bar is not interleaved with info lines.
func setupLogging() *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case interactive():
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	bowl.SetLogger(logger)
	gg.SetLogger(logger)
	return logger
}

func newReporter(logger *slog.Logger) progress.Reporter {
	if interactive() {
		return progress.NewTUI(os.Stderr)
	}
	return progress.NewLog(logger)
}
