package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
	"github.com/Xterminate1818/fishbowl/internal/calibrate"
	"github.com/Xterminate1818/fishbowl/internal/physics"
	"github.com/Xterminate1818/fishbowl/internal/render"
)

const (
	DefaultRadius = 8.0
	DefaultStep   = 20
	DefaultWidth  = 512
	DefaultHeight = 512
	DefaultDelay  = 1

	MinRadius = 1.0
	MaxRadius = 50.0
)

type Config struct {
	Radius          float64 `yaml:"radius"`
	Step            int     `yaml:"step"`
	Loop            bool    `yaml:"loop"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Backend         string  `yaml:"backend"`
	Delay           int     `yaml:"delay"`
	Substeps        int     `yaml:"substeps"`
	SettleSteps     int     `yaml:"settle_steps"`
	Response        float64 `yaml:"response"`
	CollisionRadius string  `yaml:"collision_radius"`
}

func DefaultConfig() *Config {
	return &Config{
		Radius:          DefaultRadius,
		Step:            DefaultStep,
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Backend:         string(render.KindAuto),
		Delay:           DefaultDelay,
		Substeps:        physics.DefaultSubsteps,
		SettleSteps:     calibrate.DefaultSettleSteps,
		Response:        physics.DefaultResponse,
		CollisionRadius: physics.CollisionInstigator.String(),
	}
}

// Load reads a YAML file over the defaults, so a file need only name the
// fields it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Radius >= MinRadius && c.Radius <= MaxRadius) {
		return fmt.Errorf("%w: radius must be in [%g, %g], got %g", bowl.ErrParameterBounds, MinRadius, MaxRadius, c.Radius)
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %d", bowl.ErrParameterBounds, c.Step)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", bowl.ErrParameterBounds, c.Width, c.Height)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must be non-negative, got %d", bowl.ErrParameterBounds, c.Delay)
	}
	if c.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", bowl.ErrParameterBounds, c.Substeps)
	}
	if c.SettleSteps < 0 {
		return fmt.Errorf("%w: settle steps must be non-negative, got %d", bowl.ErrParameterBounds, c.SettleSteps)
	}
	if !(c.Response > 0 && c.Response <= 1) {
		return fmt.Errorf("%w: response must be in (0, 1], got %g", bowl.ErrParameterBounds, c.Response)
	}
	if _, err := render.ParseKind(c.Backend); err != nil {
		return err
	}
	if _, ok := physics.ParseCollisionMode(c.CollisionRadius); !ok {
		return fmt.Errorf("%w: unknown collision radius mode %q", bowl.ErrParameterBounds, c.CollisionRadius)
	}
	return nil
}

// PhysicsOptions builds engine options for the configured canvas. The seed
// is left at zero; calibration derives it from the image.
func (c *Config) PhysicsOptions() physics.Options {
	opts := physics.DefaultOptions(float64(c.Width), float64(c.Height), c.Radius, 0)
	opts.Substeps = c.Substeps
	opts.Response = c.Response
	if mode, ok := physics.ParseCollisionMode(c.CollisionRadius); ok {
		opts.Collision = mode
	}
	return opts
}

func (c *Config) RendererKind() render.Kind {
	k, err := render.ParseKind(c.Backend)
	if err != nil {
		return render.KindAuto
	}
	return k
}
