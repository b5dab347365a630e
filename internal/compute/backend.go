// Package compute provides the worker backends that chunk batched physics
// work across vehicles. The backend is an explicit constructor argument of
// the stepper rather than process-global state, so two steppers in the same
// process can use different parallelism strategies.
package compute

// Backend partitions [0, n) into chunks and invokes fn on each. Rows are
// independent vehicles, so chunks may run in any order and concurrently.
type Backend interface {
	Name() string
	Run(n, minChunk int, fn func(start, end int))
}

// Select returns the backend registered under name, or nil if unknown.
func Select(name string) Backend {
	switch name {
	case "serial":
		return NewSerial()
	case "cpu":
		return NewCPU()
	default:
		return nil
	}
}

// Serial executes all work on the calling goroutine.
type Serial struct{}

func NewSerial() *Serial { return &Serial{} }

func (*Serial) Name() string { return "serial" }

func (*Serial) Run(n, minChunk int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}
