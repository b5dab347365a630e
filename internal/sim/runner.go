package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/quad"
)

// ActionFunc produces the action batch for the current state batch. The
// returned batch must be n-by-4 with n matching the state batch.
type ActionFunc func(state dynamo.Batch, t float64) dynamo.Batch

// ConstantAction applies the same rotor command row to every vehicle on
// every step.
func ConstantAction(row [4]float64) ActionFunc {
	var cached dynamo.Batch
	return func(state dynamo.Batch, t float64) dynamo.Batch {
		if cached.Len() != state.Len() {
			rows := make([][]float64, state.Len())
			for i := range rows {
				rows[i] = row[:]
			}
			cached = dynamo.FromRows(rows)
		}
		return cached
	}
}

// Observer is called after metrics on every recorded step.
type Observer interface {
	OnStep(state, action []float64, t float64)
}

type Config struct {
	Dt            float64
	Steps         int
	ValidateState bool
}

// Runner drives a batch rollout: one stepper, one action source, any number
// of metrics observing the lead vehicle.
type Runner struct {
	stepper   *quad.Stepper
	actions   ActionFunc
	metrics   []dynamo.Metric
	observers []Observer
}

func New(stepper *quad.Stepper, actions ActionFunc) *Runner {
	return &Runner{
		stepper:   stepper,
		actions:   actions,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)    { r.observers = append(r.observers, o) }

// HoverState returns an n-vehicle batch at rest with rotors spinning at the
// hover speed for p.
func HoverState(p *quad.Params, n int) dynamo.Batch {
	b := dynamo.NewBatch(n, quad.StateDim)
	w := p.HoverRotorSpeed()
	for i := 0; i < n; i++ {
		row := b.Row(i)
		for k := 0; k < 4; k++ {
			row[quad.OffRotorSpeed+k] = w
			row[quad.OffDesiredRotor+k] = w
		}
	}
	return b
}

// Run steps the batch cfg.Steps times from x0 and records the lead vehicle's
// trajectory. Metrics observe the lead row before each transition; the final
// metric values land in the result. The full batch advances together, only
// row zero is persisted.
func (r *Runner) Run(ctx context.Context, x0 dynamo.Batch, cfg Config) (*dynamo.Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &dynamo.Result{
		Times:   make([]float64, 0, cfg.Steps+1),
		States:  make([][]float64, 0, cfg.Steps+1),
		Actions: make([][]float64, 0, cfg.Steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0

	result.States = append(result.States, cloneRow(x.Row(0)))
	result.Times = append(result.Times, t)

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u := r.actions(x, t)
		lead, leadAction := x.Row(0), u.Row(0)

		for _, m := range r.metrics {
			m.Observe(lead, leadAction, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(lead, leadAction, t)
		}

		next, err := r.stepper.Step(x, u, cfg.Dt)
		if err != nil {
			return result, &dynamo.StepError{Step: i, Time: t, Wrapped: err}
		}

		if cfg.ValidateState && !next.IsValid() {
			return result, &dynamo.StepError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		x = next
		t += cfg.Dt

		result.States = append(result.States, cloneRow(x.Row(0)))
		result.Actions = append(result.Actions, cloneRow(leadAction))
		result.Times = append(result.Times, t)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	return nil
}

func cloneRow(row []float64) []float64 {
	c := make([]float64, len(row))
	copy(c, row)
	return c
}
