package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDimensionMismatch indicates a batch with the wrong per-row dimension.
	ErrDimensionMismatch = errors.New("quadsim: dimension mismatch")

	// ErrBatchSizeMismatch indicates two batches with different row counts.
	ErrBatchSizeMismatch = errors.New("quadsim: batch size mismatch")

	// ErrParameterBounds indicates a physical parameter outside its valid range.
	ErrParameterBounds = errors.New("quadsim: parameter out of valid bounds")

	// ErrInvalidState indicates a state batch containing NaN or Inf.
	ErrInvalidState = errors.New("quadsim: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the step index and simulation time at which
// it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// CheckDim fails fast when a batch does not carry the expected row dimension.
func CheckDim(b Batch, dim int, name string) error {
	if b.Dim() != dim {
		return fmt.Errorf("%w: %s has dim %d, want %d", ErrDimensionMismatch, name, b.Dim(), dim)
	}
	return nil
}

// CheckAligned fails fast when two batches disagree on row count.
func CheckAligned(a, b Batch, aName, bName string) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %s has %d rows, %s has %d", ErrBatchSizeMismatch, aName, a.Len(), bName, b.Len())
	}
	return nil
}
