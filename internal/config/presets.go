package config

import "github.com/san-kum/quadsim/internal/quad"

var Presets = map[string]*Config{
	"hover": {
		Dt: quad.DefaultDt, Steps: 500, Batch: 1, Seed: 1, Backend: "cpu",
		Action: ActionConfig{Mode: "hover"},
		Params: *quad.DefaultParams(),
	},
	"drop": {
		Dt: quad.DefaultDt, Steps: 250, Batch: 1, Seed: 1, Backend: "cpu",
		Action: ActionConfig{Mode: "zero"},
		Params: *quad.DefaultParams(),
	},
	"tumble": {
		Dt: quad.DefaultDt, Steps: 500, Batch: 1, Seed: 1, Backend: "cpu",
		Action: ActionConfig{Mode: "constant", Values: [4]float64{0.7, 0.4, 0.7, 0.4}},
		Params: *quad.DefaultParams(),
	},
	"swarm": {
		Dt: quad.DefaultDt, Steps: 200, Batch: 1024, Seed: 1, Backend: "cpu",
		Action: ActionConfig{Mode: "hover"},
		Params: *quad.DefaultParams(),
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
