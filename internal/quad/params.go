package quad

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// State vector layout (channel offsets into a 20-dim row).
const (
	StateDim  = 20
	ActionDim = 4

	OffPosition        = 0
	OffAttitude        = 3
	OffVelocity        = 6
	OffRotorSpeed      = 9
	OffDesiredRotor    = 13
	OffAngularVelocity = 17
)

// DefaultDt is the fixed training-environment timestep in seconds.
const DefaultDt = 0.02

// Rotor names the physical rotor behind each action/state index.
type Rotor int

const (
	RotorFrontRight Rotor = iota
	RotorBackLeft
	RotorFrontLeft
	RotorBackRight
)

func (r Rotor) String() string {
	switch r {
	case RotorFrontRight:
		return "front-right"
	case RotorBackLeft:
		return "back-left"
	case RotorFrontLeft:
		return "front-left"
	case RotorBackRight:
		return "back-right"
	}
	return fmt.Sprintf("rotor(%d)", int(r))
}

// Spin returns +1 for counter-clockwise rotors and -1 for clockwise ones.
// Adjacent rotors alternate, so yaw torque follows w0 - w1 + w2 - w3.
func (r Rotor) Spin() int {
	if r == RotorFrontRight || r == RotorFrontLeft {
		return 1
	}
	return -1
}

// Params holds the physical constants of a vehicle. Loaded once, treated as
// immutable afterwards: the stepper keeps a private copy.
type Params struct {
	Mass               float64    `yaml:"mass"`
	ThrustFactor       float64    `yaml:"thrust_factor"`
	ArmLength          float64    `yaml:"arm_length"`
	DragFactor         float64    `yaml:"drag_factor"`
	MaxRotorSpeed      float64    `yaml:"max_rotor_speed"`
	RotorSpeedHalfTime float64    `yaml:"rotor_speed_half_time"`
	RotorInertia       float64    `yaml:"rotor_inertia"`
	TranslationalDrag  [3]float64 `yaml:"translational_drag"`
	RotationalDrag     [3]float64 `yaml:"rotational_drag"`
	FrameInertia       [3]float64 `yaml:"frame_inertia"`
	Gravity            [3]float64 `yaml:"gravity"`
}

// DefaultParams returns a hover-capable 0.7 kg vehicle with z-up gravity.
func DefaultParams() *Params {
	return &Params{
		Mass:               0.723,
		ThrustFactor:       1.91e-6,
		ArmLength:          0.31,
		DragFactor:         2.6e-7,
		MaxRotorSpeed:      1200.0,
		RotorSpeedHalfTime: 0.0625,
		RotorInertia:       7.32e-5,
		TranslationalDrag:  [3]float64{0.1, 0.1, 0.1},
		RotationalDrag:     [3]float64{1e-4, 1e-4, 1e-4},
		FrameInertia:       [3]float64{8.678e-3, 8.678e-3, 3.217e-2},
		Gravity:            [3]float64{0, 0, -9.81},
	}
}

// Validate rejects structurally-zero parameters that would otherwise surface
// as divisions by zero or sqrt domain errors inside the step loop.
func (p *Params) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"mass", p.Mass},
		{"thrust_factor", p.ThrustFactor},
		{"arm_length", p.ArmLength},
		{"max_rotor_speed", p.MaxRotorSpeed},
		{"rotor_speed_half_time", p.RotorSpeedHalfTime},
	}
	for _, c := range checks {
		if c.v <= 0 || math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", dynamo.ErrParameterBounds, c.name, c.v)
		}
	}
	if p.DragFactor < 0 {
		return fmt.Errorf("%w: drag_factor must be non-negative, got %v", dynamo.ErrParameterBounds, p.DragFactor)
	}
	if p.RotorInertia < 0 {
		return fmt.Errorf("%w: rotor_inertia must be non-negative, got %v", dynamo.ErrParameterBounds, p.RotorInertia)
	}
	for i, v := range p.FrameInertia {
		if v <= 0 {
			return fmt.Errorf("%w: frame_inertia[%d] must be positive, got %v", dynamo.ErrParameterBounds, i, v)
		}
	}
	return nil
}

// HoverRotorSpeed returns the rotor speed at which total thrust balances
// gravity: sqrt(m*|g_z| / (4*b)).
func (p *Params) HoverRotorSpeed() float64 {
	return math.Sqrt(p.Mass * math.Abs(p.Gravity[2]) / (4 * p.ThrustFactor))
}

// HoverAction returns the per-rotor normalized thrust demand whose desired
// rotor speed equals HoverRotorSpeed.
func (p *Params) HoverAction() float64 {
	w := p.HoverRotorSpeed() / p.MaxRotorSpeed
	return w * w
}

// Gamma is the first-order lag gain for a timestep: 1 - 0.5^(dt/halfTime).
// Gamma(0) is exactly zero, so a zero-dt step leaves rotor speeds untouched.
func (p *Params) Gamma(dt float64) float64 {
	return 1.0 - math.Pow(0.5, dt/p.RotorSpeedHalfTime)
}

// LoadParams reads a parameter set from a YAML file, starting from defaults
// so partial files are usable, and validates the result.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := DefaultParams()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveParams writes a parameter set as YAML.
func SaveParams(path string, p *Params) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
