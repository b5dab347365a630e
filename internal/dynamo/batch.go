package dynamo

import "math"

// Batch is a dense row-major matrix of n rows by dim columns, one row per
// vehicle. The zero value is an empty batch.
type Batch struct {
	data []float64
	n    int
	dim  int
}

// NewBatch allocates a zeroed n-by-dim batch.
func NewBatch(n, dim int) Batch {
	return Batch{
		data: make([]float64, n*dim),
		n:    n,
		dim:  dim,
	}
}

// FromRows builds a batch from explicit rows. All rows must share the length
// of the first; short rows are zero-padded, long rows truncated.
func FromRows(rows [][]float64) Batch {
	if len(rows) == 0 {
		return Batch{}
	}
	b := NewBatch(len(rows), len(rows[0]))
	for i, row := range rows {
		copy(b.Row(i), row)
	}
	return b
}

func (b Batch) Len() int { return b.n }
func (b Batch) Dim() int { return b.dim }

// Row returns row i as a slice aliasing the batch storage. Mutating the
// returned slice mutates the batch.
func (b Batch) Row(i int) []float64 {
	return b.data[i*b.dim : (i+1)*b.dim]
}

// Col returns column j copied into a fresh slice.
func (b Batch) Col(j int) []float64 {
	out := make([]float64, b.n)
	for i := 0; i < b.n; i++ {
		out[i] = b.data[i*b.dim+j]
	}
	return out
}

func (b Batch) At(i, j int) float64     { return b.data[i*b.dim+j] }
func (b Batch) Set(i, j int, v float64) { b.data[i*b.dim+j] = v }

// Raw exposes the underlying row-major storage.
func (b Batch) Raw() []float64 { return b.data }

func (b Batch) Clone() Batch {
	c := Batch{data: make([]float64, len(b.data)), n: b.n, dim: b.dim}
	copy(c.data, b.data)
	return c
}

// IsValid reports whether the batch is free of NaN and Inf values.
func (b Batch) IsValid() bool {
	for _, v := range b.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Frobenius norm over all entries.
func (b Batch) Norm() float64 {
	sum := 0.0
	for _, v := range b.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub returns b - other entrywise. Batches must have identical shape.
func (b Batch) Sub(other Batch) Batch {
	c := Batch{data: make([]float64, len(b.data)), n: b.n, dim: b.dim}
	for i := range b.data {
		c.data[i] = b.data[i] - other.data[i]
	}
	return c
}
