package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/quad"
)

var _ dynamo.Metric = (*Stability)(nil)
var _ dynamo.Metric = (*ControlEffort)(nil)
var _ dynamo.Metric = (*HoverError)(nil)

func levelState() []float64 {
	return make([]float64, quad.StateDim)
}

func TestStabilityAllLevel(t *testing.T) {
	m := NewStability(0.5, 2.0)

	for i := 0; i < 10; i++ {
		m.Observe(levelState(), nil, 0)
	}

	if m.Value() != 1.0 {
		t.Errorf("expected stability 1.0, got %f", m.Value())
	}
}

func TestStabilityViolations(t *testing.T) {
	m := NewStability(0.5, 2.0)

	tipped := levelState()
	tipped[quad.OffAttitude+1] = 1.2

	spinning := levelState()
	spinning[quad.OffAngularVelocity+2] = 5.0

	m.Observe(levelState(), nil, 0)
	m.Observe(tipped, nil, 0)
	m.Observe(spinning, nil, 0)
	m.Observe(levelState(), nil, 0)

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 1.0 {
		t.Errorf("expected stability 1.0 after reset, got %f", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()

	m.Observe(nil, []float64{0.5, 0.5, 0.5, 0.5}, 0)
	m.Observe(nil, []float64{1.0, 0.0, 1.0, 0.0}, 0)

	if math.Abs(m.Value()-2.0) > 1e-12 {
		t.Errorf("expected effort 2.0, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected zero effort after reset, got %f", m.Value())
	}
}

func TestHoverErrorRMS(t *testing.T) {
	m := NewHoverError(1.0)

	at := func(z float64) []float64 {
		x := levelState()
		x[quad.OffPosition+2] = z
		return x
	}

	m.Observe(at(1.0), nil, 0)
	m.Observe(at(1.3), nil, 0)
	m.Observe(at(0.7), nil, 0)

	want := math.Sqrt((0 + 0.09 + 0.09) / 3)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected RMS %f, got %f", want, m.Value())
	}

	if math.Abs(m.Max()-0.3) > 1e-12 {
		t.Errorf("expected max deviation 0.3, got %f", m.Max())
	}
}

func TestHoverErrorEmpty(t *testing.T) {
	m := NewHoverError(0)
	if m.Value() != 0 {
		t.Errorf("expected zero error with no samples, got %f", m.Value())
	}
}
