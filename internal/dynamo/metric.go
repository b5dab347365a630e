package dynamo

// Metric accumulates a scalar quality measure over the steps of a rollout.
// Observe receives the lead-vehicle state row and the action applied to it.
type Metric interface {
	Name() string
	Observe(state, action []float64, t float64)
	Value() float64
	Reset()
}
