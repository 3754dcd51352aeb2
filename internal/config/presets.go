package config

import "sort"

// Presets trade detail for speed: smaller circles resolve more of the image
// but take more particles to fill the bowl.
var Presets = map[string]*Config{
	"fine": {
		Radius: 4, Step: 10,
	},
	"default": {
		Radius: DefaultRadius, Step: DefaultStep,
	},
	"coarse": {
		Radius: 12, Step: 20,
	},
	"chunky": {
		Radius: 20, Step: 30, Loop: true,
	},
}

// GetPreset returns a full configuration for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Radius = p.Radius
	cfg.Step = p.Step
	cfg.Loop = p.Loop
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
