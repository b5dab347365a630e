package quad

import (
	"github.com/san-kum/quadsim/internal/dynamo"
)

// linearAccelRow computes world-frame translational acceleration for one
// vehicle: body-z thrust rotated into the world frame, minus the rotated
// diagonal drag tensor applied to velocity, plus gravity.
func (p *Params) linearAccelRow(w, att, vel, out []float64) {
	var m [9]float64
	worldToBodyRow(att[0], att[1], att[2], m[:])

	sq := w[0]*w[0] + w[1]*w[1] + w[2]*w[2] + w[3]*w[3]
	thrust := p.ThrustFactor / p.Mass * sq

	// Body-frame velocity, then per-axis drag in the body frame.
	var d [3]float64
	for j := 0; j < 3; j++ {
		bv := m[3*j]*vel[0] + m[3*j+1]*vel[1] + m[3*j+2]*vel[2]
		d[j] = p.TranslationalDrag[j] * bv
	}

	// Body z-axis in world coordinates is the third row of the world-to-body
	// matrix; (R_wtb)^T columns rotate body vectors back to the world frame.
	for i := 0; i < 3; i++ {
		drag := (m[i]*d[0] + m[3+i]*d[1] + m[6+i]*d[2]) / p.Mass
		out[i] = thrust*m[6+i] - drag + p.Gravity[i]
	}
}

// propellerTorquesRow computes the body-frame torques generated directly by
// the four propellers from their squared speeds.
func (p *Params) propellerTorquesRow(w, out []float64) {
	r0 := w[0] * w[0]
	r1 := w[1] * w[1]
	r2 := w[2] * w[2]
	r3 := w[3] * w[3]

	lb := p.ArmLength * p.ThrustFactor
	out[0] = lb * (r3 - r1)
	out[1] = lb * (r0 - r2)
	out[2] = p.DragFactor * (r3 + r1 - r2 - r0)
}

// netRotorSpeed is the spin-signed rotor speed sum; the sign pattern follows
// the alternating rotation directions of adjacent rotors.
func netRotorSpeed(w []float64) float64 {
	return w[0] - w[1] + w[2] - w[3]
}

// angularAccelRow combines propeller torque, rotational drag, gyroscopic
// precession and inertial cross-coupling, then divides by the frame inertia
// diagonal.
func (p *Params) angularAccelRow(w, av, out []float64) {
	var mp [3]float64
	p.propellerTorquesRow(w, mp[:])

	gyro := p.RotorInertia * netRotorSpeed(w)

	iw0 := p.FrameInertia[0] * av[0]
	iw1 := p.FrameInertia[1] * av[1]
	iw2 := p.FrameInertia[2] * av[2]

	cross0 := av[1]*iw2 - av[2]*iw1
	cross1 := av[2]*iw0 - av[0]*iw2
	cross2 := av[0]*iw1 - av[1]*iw0

	out[0] = (mp[0] - p.RotationalDrag[0]*av[0] + gyro*av[2] - cross0) / p.FrameInertia[0]
	out[1] = (mp[1] - p.RotationalDrag[1]*av[1] - gyro*av[1] - cross1) / p.FrameInertia[1]
	out[2] = (mp[2] - p.RotationalDrag[2]*av[2] - cross2) / p.FrameInertia[2]
}

// LinearAcceleration returns world-frame translational acceleration per
// vehicle: thrust - drag + gravity. rotorSpeed is n-by-4, attitude and
// velocity n-by-3; a batch-size mismatch fails fast.
func (p *Params) LinearAcceleration(rotorSpeed, attitude, velocity dynamo.Batch) (dynamo.Batch, error) {
	if err := dynamo.CheckAligned(rotorSpeed, attitude, "rotor_speed", "attitude"); err != nil {
		return dynamo.Batch{}, err
	}
	if err := dynamo.CheckAligned(rotorSpeed, velocity, "rotor_speed", "velocity"); err != nil {
		return dynamo.Batch{}, err
	}
	out := dynamo.NewBatch(rotorSpeed.Len(), 3)
	for i := 0; i < rotorSpeed.Len(); i++ {
		p.linearAccelRow(rotorSpeed.Row(i), attitude.Row(i), velocity.Row(i), out.Row(i))
	}
	return out, nil
}

// PropellerTorques returns the n-by-3 body-frame torque batch produced by
// differential thrust (roll, pitch) and rotor drag (yaw).
func (p *Params) PropellerTorques(rotorSpeed dynamo.Batch) dynamo.Batch {
	out := dynamo.NewBatch(rotorSpeed.Len(), 3)
	for i := 0; i < rotorSpeed.Len(); i++ {
		p.propellerTorquesRow(rotorSpeed.Row(i), out.Row(i))
	}
	return out
}

// AngularAcceleration returns body-frame angular acceleration per vehicle.
func (p *Params) AngularAcceleration(rotorSpeed, angularVelocity dynamo.Batch) (dynamo.Batch, error) {
	if err := dynamo.CheckAligned(rotorSpeed, angularVelocity, "rotor_speed", "angular_velocity"); err != nil {
		return dynamo.Batch{}, err
	}
	out := dynamo.NewBatch(rotorSpeed.Len(), 3)
	for i := 0; i < rotorSpeed.Len(); i++ {
		p.angularAccelRow(rotorSpeed.Row(i), angularVelocity.Row(i), out.Row(i))
	}
	return out, nil
}
