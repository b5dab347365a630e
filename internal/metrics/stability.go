package metrics

import (
	"math"

	"github.com/san-kum/quadsim/internal/quad"
)

// Stability reports the fraction of observed samples where the vehicle stayed
// upright: attitude angles below attitudeMax and body rates below rateMax.
type Stability struct {
	name        string
	attitudeMax float64
	rateMax     float64
	violations  int
	samples     int
}

func NewStability(attitudeMax, rateMax float64) *Stability {
	return &Stability{
		name:        "stability",
		attitudeMax: attitudeMax,
		rateMax:     rateMax,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x, u []float64, t float64) {
	s.samples++
	for k := 0; k < 3; k++ {
		if math.Abs(x[quad.OffAttitude+k]) > s.attitudeMax {
			s.violations++
			return
		}
	}
	for k := 0; k < 3; k++ {
		if math.Abs(x[quad.OffAngularVelocity+k]) > s.rateMax {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
