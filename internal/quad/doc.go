// Package quad implements batched quadrotor rigid-body dynamics.
//
// Each vehicle carries a 20-channel state row: world-frame position (0-3),
// Euler attitude roll/pitch/yaw (3-6), world-frame velocity (6-9), rotor
// speeds (9-13), last commanded rotor speeds (13-17) and body-frame angular
// velocity (17-20). Attitude angles are never wrapped; only their
// trigonometric images are consumed, so unbounded accumulation is harmless.
//
// Rotors follow the alternating-spin X layout named by [Rotor]: front-right
// and front-left spin counter-clockwise, back-left and back-right clockwise.
// Roll torque comes from the back-right/back-left thrust difference, pitch
// from front-right/front-left, and yaw from the signed sum of squared speeds
// scaled by the rotor drag factor.
//
// The Euler representation is singular at pitch ±90° (gimbal lock). The
// kinematics silently produce a valid but physically inaccurate Euler-rate
// matrix there; this is a documented limitation, not an error path.
package quad
