package quad

import (
	"github.com/san-kum/quadsim/internal/compute"
	"github.com/san-kum/quadsim/internal/dynamo"
)

// Batches below this size are stepped on the calling goroutine regardless of
// backend; the per-row kernel is too cheap to amortize goroutine handoff.
const minParallelBatch = 64

// Stepper advances batches of vehicle states by one fixed timestep. It is a
// pure transition function: no state is carried between calls and identical
// inputs always produce identical outputs.
type Stepper struct {
	params  Params
	backend compute.Backend
}

// NewStepper validates the parameter set once, takes a private copy of it and
// binds the compute backend. A nil backend falls back to serial execution.
func NewStepper(p *Params, backend compute.Backend) (*Stepper, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = compute.NewSerial()
	}
	return &Stepper{params: *p, backend: backend}, nil
}

// Params returns a copy of the stepper's parameter set.
func (s *Stepper) Params() Params { return s.params }

// Backend returns the compute backend the stepper chunks work with.
func (s *Stepper) Backend() compute.Backend { return s.backend }

// Step advances every vehicle in the state batch by dt using the action
// batch and returns a freshly allocated next-state batch. state must be
// n-by-20, action n-by-4 with matching n; mismatches fail fast before any
// computation. Inputs are never mutated.
//
// Per vehicle: rotor speeds move toward sqrt(action)*maxSpeed with first-
// order lag, accelerations are evaluated with the updated rotor speeds, then
// the state integrates semi-implicitly — position from the pre-update
// velocity plus the 0.5*dt² acceleration term, velocity and angular velocity
// explicitly, and attitude from the Euler rate of the *updated* angular
// velocity.
func (s *Stepper) Step(state, action dynamo.Batch, dt float64) (dynamo.Batch, error) {
	if err := dynamo.CheckDim(state, StateDim, "state"); err != nil {
		return dynamo.Batch{}, err
	}
	if err := dynamo.CheckDim(action, ActionDim, "action"); err != nil {
		return dynamo.Batch{}, err
	}
	if err := dynamo.CheckAligned(state, action, "state", "action"); err != nil {
		return dynamo.Batch{}, err
	}

	n := state.Len()
	next := dynamo.NewBatch(n, StateDim)
	gamma := s.params.Gamma(dt)

	s.backend.Run(n, minParallelBatch, func(start, end int) {
		for i := start; i < end; i++ {
			s.stepRow(state.Row(i), action.Row(i), next.Row(i), dt, gamma)
		}
	})

	return next, nil
}

func (s *Stepper) stepRow(x, u, out []float64, dt, gamma float64) {
	p := &s.params

	pos := x[OffPosition:OffAttitude]
	att := x[OffAttitude:OffVelocity]
	vel := x[OffVelocity:OffRotorSpeed]
	w := x[OffRotorSpeed:OffDesiredRotor]
	av := x[OffAngularVelocity:StateDim]

	speed := out[OffRotorSpeed:OffDesiredRotor]
	desired := out[OffDesiredRotor:OffAngularVelocity]
	p.rotorUpdateRow(u, w, gamma, speed, desired)

	var acc, angAcc [3]float64
	p.linearAccelRow(speed, att, vel, acc[:])
	p.angularAccelRow(speed, av, angAcc[:])

	avNew := out[OffAngularVelocity:StateDim]
	for k := 0; k < 3; k++ {
		out[OffPosition+k] = pos[k] + 0.5*dt*dt*acc[k] + dt*vel[k]
		out[OffVelocity+k] = vel[k] + dt*acc[k]
		avNew[k] = av[k] + dt*angAcc[k]
	}

	var rate [3]float64
	eulerRateRow(att, avNew, rate[:])
	for k := 0; k < 3; k++ {
		out[OffAttitude+k] = att[k] + dt*rate[k]
	}
}
