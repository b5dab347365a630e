package dynamo

// Result collects the recorded trajectory of one rollout. States and Actions
// hold the lead vehicle's rows per step; the full batch is not persisted.
type Result struct {
	Times   []float64
	States  [][]float64
	Actions [][]float64
	Metrics map[string]float64
}
