package env

import (
	"fmt"
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// Normalizer holds per-channel mean and standard deviation computed over a
// state batch. Channels whose std is zero (constant columns, e.g. untouched
// position channels of a fresh sample) normalize with std 1 so they pass
// through unscaled instead of dividing by zero.
type Normalizer struct {
	mean []float64
	std  []float64
}

// NewNormalizer computes column statistics over the given batch.
func NewNormalizer(states dynamo.Batch) *Normalizer {
	dim := states.Dim()
	n := states.Len()

	mean := make([]float64, dim)
	std := make([]float64, dim)

	if n == 0 {
		for j := range std {
			std[j] = 1
		}
		return &Normalizer{mean: mean, std: std}
	}

	for i := 0; i < n; i++ {
		row := states.Row(i)
		for j := 0; j < dim; j++ {
			mean[j] += row[j]
		}
	}
	for j := 0; j < dim; j++ {
		mean[j] /= float64(n)
	}

	for i := 0; i < n; i++ {
		row := states.Row(i)
		for j := 0; j < dim; j++ {
			d := row[j] - mean[j]
			std[j] += d * d
		}
	}
	for j := 0; j < dim; j++ {
		std[j] = math.Sqrt(std[j] / float64(n))
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &Normalizer{mean: mean, std: std}
}

// Dim returns the number of channels the normalizer was computed over.
func (z *Normalizer) Dim() int { return len(z.mean) }

// MeanStd returns the statistics for one state channel.
func (z *Normalizer) MeanStd(channel int) (mean, std float64, err error) {
	if channel < 0 || channel >= len(z.mean) {
		return 0, 0, fmt.Errorf("channel %d out of range [0, %d)", channel, len(z.mean))
	}
	return z.mean[channel], z.std[channel], nil
}

// Normalize returns (b - mean) / std per channel as a new batch.
func (z *Normalizer) Normalize(b dynamo.Batch) (dynamo.Batch, error) {
	if err := dynamo.CheckDim(b, len(z.mean), "batch"); err != nil {
		return dynamo.Batch{}, err
	}
	out := b.Clone()
	for i := 0; i < out.Len(); i++ {
		row := out.Row(i)
		for j := range row {
			row[j] = (row[j] - z.mean[j]) / z.std[j]
		}
	}
	return out, nil
}

// Denormalize is the inverse of Normalize.
func (z *Normalizer) Denormalize(b dynamo.Batch) (dynamo.Batch, error) {
	if err := dynamo.CheckDim(b, len(z.mean), "batch"); err != nil {
		return dynamo.Batch{}, err
	}
	out := b.Clone()
	for i := 0; i < out.Len(); i++ {
		row := out.Row(i)
		for j := range row {
			row[j] = row[j]*z.std[j] + z.mean[j]
		}
	}
	return out, nil
}
