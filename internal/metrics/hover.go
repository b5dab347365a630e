package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/quad"
)

// HoverError tracks the RMS deviation from a target altitude. With a zero
// target it measures how far the vehicle drifted from its launch height.
type HoverError struct {
	name     string
	target   float64
	sqSum    float64
	samples  int
	maxError float64
}

func NewHoverError(target float64) *HoverError {
	return &HoverError{
		name:   "hover_error",
		target: target,
	}
}

func (h *HoverError) Name() string {
	return h.name
}

func (h *HoverError) Observe(x, u []float64, t float64) {
	dev := x[quad.OffPosition+2] - h.target
	h.sqSum += dev * dev
	if math.Abs(dev) > h.maxError {
		h.maxError = math.Abs(dev)
	}
	h.samples++
}

func (h *HoverError) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return math.Sqrt(h.sqSum / float64(h.samples))
}

func (h *HoverError) Max() float64 {
	return h.maxError
}

func (h *HoverError) Reset() {
	h.sqSum = 0
	h.maxError = 0
	h.samples = 0
}
