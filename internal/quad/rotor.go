package quad

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// rotorUpdateRow applies the first-order motor lag for one vehicle. Negative
// action components are clamped to zero before the square root, and the
// resulting speed is clamped at zero: rotors cannot spin in reverse.
func (p *Params) rotorUpdateRow(action, w []float64, gamma float64, speed, desired []float64) {
	for k := 0; k < ActionDim; k++ {
		a := action[k]
		if a < 0 {
			a = 0
		}
		des := math.Sqrt(a) * p.MaxRotorSpeed
		s := w[k] + gamma*(des-w[k])
		if s < 0 {
			s = 0
		}
		speed[k] = s
		desired[k] = des
	}
}

// UpdateRotorSpeeds maps an n-by-4 action batch to desired rotor speeds
// (sqrt(action) * max speed) and moves the current speeds toward them with
// gain Gamma(dt). Returns the updated speeds and the desired targets.
func (p *Params) UpdateRotorSpeeds(action, rotorSpeed dynamo.Batch, dt float64) (dynamo.Batch, dynamo.Batch, error) {
	if err := dynamo.CheckDim(action, ActionDim, "action"); err != nil {
		return dynamo.Batch{}, dynamo.Batch{}, err
	}
	if err := dynamo.CheckDim(rotorSpeed, ActionDim, "rotor_speed"); err != nil {
		return dynamo.Batch{}, dynamo.Batch{}, err
	}
	if err := dynamo.CheckAligned(action, rotorSpeed, "action", "rotor_speed"); err != nil {
		return dynamo.Batch{}, dynamo.Batch{}, err
	}

	gamma := p.Gamma(dt)
	speed := dynamo.NewBatch(action.Len(), ActionDim)
	desired := dynamo.NewBatch(action.Len(), ActionDim)
	for i := 0; i < action.Len(); i++ {
		p.rotorUpdateRow(action.Row(i), rotorSpeed.Row(i), gamma, speed.Row(i), desired.Row(i))
	}
	return speed, desired, nil
}
