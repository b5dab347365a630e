package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/quad"
)

const (
	DefaultSteps = 500
	DefaultBatch = 1
	DefaultSeed  = 1
)

// ActionConfig selects how rotor commands are produced during a rollout.
// Mode "hover" commands the thrust that balances gravity, "constant" applies
// Values verbatim, "zero" cuts all rotors.
type ActionConfig struct {
	Mode   string     `yaml:"mode"`
	Values [4]float64 `yaml:"values"`
}

// Config describes one simulation rollout.
type Config struct {
	Dt      float64      `yaml:"dt"`
	Steps   int          `yaml:"steps"`
	Batch   int          `yaml:"batch"`
	Seed    int64        `yaml:"seed"`
	Backend string       `yaml:"backend"`
	Action  ActionConfig `yaml:"action"`
	Params  quad.Params  `yaml:"params"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:      quad.DefaultDt,
		Steps:   DefaultSteps,
		Batch:   DefaultBatch,
		Seed:    DefaultSeed,
		Backend: "cpu",
		Action:  ActionConfig{Mode: "hover"},
		Params:  *quad.DefaultParams(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ActionRow resolves the action config to a per-rotor command row.
func (c *Config) ActionRow() ([4]float64, error) {
	switch c.Action.Mode {
	case "", "hover":
		a := c.Params.HoverAction()
		return [4]float64{a, a, a, a}, nil
	case "constant":
		for k, v := range c.Action.Values {
			if v < 0 {
				return [4]float64{}, fmt.Errorf("action value %d is negative: %v", k, v)
			}
		}
		return c.Action.Values, nil
	case "zero":
		return [4]float64{}, nil
	default:
		return [4]float64{}, fmt.Errorf("unknown action mode: %s", c.Action.Mode)
	}
}
