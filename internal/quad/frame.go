package quad

import (
	"math"

	"github.com/san-kum/quadsim/internal/dynamo"
)

// worldToBodyRow fills m (len 9, row-major 3x3) with the rotation taking
// world-frame vectors into the body frame for roll-pitch-yaw attitude.
func worldToBodyRow(roll, pitch, yaw float64, m []float64) {
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)

	m[0] = cy * cp
	m[1] = sy * cp
	m[2] = -sp
	m[3] = cy*sp*sr - cr*sy
	m[4] = cr*cy + sr*sy*sp
	m[5] = cp * sr
	m[6] = cy*sp*cr + sr*sy
	m[7] = cr*sy*sp - cy*sr
	m[8] = cr * cp
}

// eulerRateRow maps body-frame angular velocity av to Euler angle rates.
func eulerRateRow(att, av, out []float64) {
	sr, cr := math.Sincos(att[0])
	sp, cp := math.Sincos(att[1])

	out[0] = av[0] - sp*av[2]
	out[1] = cr*av[1] + cp*sr*av[2]
	out[2] = -sr*av[1] + cp*cr*av[2]
}

// WorldToBody builds one world-to-body rotation matrix per vehicle from an
// n-by-3 attitude batch. Rows of the result hold the 3x3 matrix row-major.
// Matrices are recomputed on every call; there is no caching.
func WorldToBody(attitude dynamo.Batch) dynamo.Batch {
	out := dynamo.NewBatch(attitude.Len(), 9)
	for i := 0; i < attitude.Len(); i++ {
		a := attitude.Row(i)
		worldToBodyRow(a[0], a[1], a[2], out.Row(i))
	}
	return out
}

// BodyToWorld is the per-vehicle transpose of WorldToBody (rotations are
// orthonormal, so the transpose is the inverse).
func BodyToWorld(attitude dynamo.Batch) dynamo.Batch {
	out := WorldToBody(attitude)
	for i := 0; i < out.Len(); i++ {
		m := out.Row(i)
		m[1], m[3] = m[3], m[1]
		m[2], m[6] = m[6], m[2]
		m[5], m[7] = m[7], m[5]
	}
	return out
}

// EulerRateMatrix builds the n-by-9 batch of matrices mapping body-frame
// angular velocity to Euler angle time derivatives. Singular at pitch ±90°.
func EulerRateMatrix(attitude dynamo.Batch) dynamo.Batch {
	out := dynamo.NewBatch(attitude.Len(), 9)
	for i := 0; i < attitude.Len(); i++ {
		a := attitude.Row(i)
		sr, cr := math.Sincos(a[0])
		sp, cp := math.Sincos(a[1])

		m := out.Row(i)
		m[0] = 1
		m[2] = -sp
		m[4] = cr
		m[5] = cp * sr
		m[7] = -sr
		m[8] = cp * cr
	}
	return out
}

// EulerRate returns d(attitude)/dt for each vehicle given its attitude and
// body-frame angular velocity.
func EulerRate(attitude, angularVelocity dynamo.Batch) (dynamo.Batch, error) {
	if err := dynamo.CheckAligned(attitude, angularVelocity, "attitude", "angular_velocity"); err != nil {
		return dynamo.Batch{}, err
	}
	out := dynamo.NewBatch(attitude.Len(), 3)
	for i := 0; i < attitude.Len(); i++ {
		eulerRateRow(attitude.Row(i), angularVelocity.Row(i), out.Row(i))
	}
	return out, nil
}
