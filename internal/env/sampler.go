// Package env provides the batch data interfaces around the dynamics core:
// random state sampling, per-channel normalization statistics, and the
// dataset glue that shapes state batches for a training loop. The dynamics
// stepper itself only ever sees raw physical units; normalization lives
// entirely on this side of the boundary.
package env

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/quad"
)

// SamplerConfig bounds the random perturbations applied around the hover
// state when sampling. Zero values fall back to the defaults.
type SamplerConfig struct {
	Seed          int64
	Dt            float64
	Horizon       int     // reference trajectory length in steps
	AttitudeRange float64 // radians, uniform around level
	VelocityRange float64 // m/s per world axis
	AngVelRange   float64 // rad/s per body axis
	RotorJitter   float64 // fraction of hover rotor speed
}

func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Seed:          1,
		Dt:            quad.DefaultDt,
		Horizon:       10,
		AttitudeRange: 0.3,
		VelocityRange: 1.0,
		AngVelRange:   0.5,
		RotorJitter:   0.1,
	}
}

// Sampler draws random initial state batches near hover and produces the
// matching reference trajectories by rolling the dynamics forward under the
// hover action. Sampling is deterministic for a given seed.
type Sampler struct {
	stepper *quad.Stepper
	cfg     SamplerConfig
	rng     *rand.Rand
}

func NewSampler(stepper *quad.Stepper, cfg SamplerConfig) *Sampler {
	def := DefaultSamplerConfig()
	if cfg.Dt <= 0 {
		cfg.Dt = def.Dt
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = def.Horizon
	}
	return &Sampler{
		stepper: stepper,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (s *Sampler) uniform(scale float64) float64 {
	return (2*s.rng.Float64() - 1) * scale
}

// SampleStates returns an (n, 20) initial state batch and the reference
// trajectory: one (n, 20) batch per horizon step, obtained by stepping the
// sampled states forward under the hover action.
func (s *Sampler) SampleStates(n int) (dynamo.Batch, []dynamo.Batch, error) {
	if n <= 0 {
		return dynamo.Batch{}, nil, fmt.Errorf("sample size must be positive, got %d", n)
	}

	p := s.stepper.Params()
	hover := p.HoverRotorSpeed()

	states := dynamo.NewBatch(n, quad.StateDim)
	for i := 0; i < n; i++ {
		row := states.Row(i)
		for k := 0; k < 3; k++ {
			row[quad.OffAttitude+k] = s.uniform(s.cfg.AttitudeRange)
			row[quad.OffVelocity+k] = s.uniform(s.cfg.VelocityRange)
			row[quad.OffAngularVelocity+k] = s.uniform(s.cfg.AngVelRange)
		}
		for k := 0; k < 4; k++ {
			w := hover * (1 + s.uniform(s.cfg.RotorJitter))
			if w < 0 {
				w = 0
			}
			row[quad.OffRotorSpeed+k] = w
			row[quad.OffDesiredRotor+k] = w
		}
	}

	action := dynamo.NewBatch(n, quad.ActionDim)
	a := p.HoverAction()
	for i := 0; i < n; i++ {
		u := action.Row(i)
		for k := 0; k < 4; k++ {
			u[k] = a
		}
	}

	refs := make([]dynamo.Batch, 0, s.cfg.Horizon)
	cur := states
	for h := 0; h < s.cfg.Horizon; h++ {
		next, err := s.stepper.Step(cur, action, s.cfg.Dt)
		if err != nil {
			return dynamo.Batch{}, nil, fmt.Errorf("reference rollout step %d: %w", h, err)
		}
		refs = append(refs, next)
		cur = next
	}

	return states, refs, nil
}
