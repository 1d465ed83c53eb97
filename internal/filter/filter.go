// Package filter holds the scalar conditioning primitives applied to demands.
package filter

import "math"

// Deadband returns 0 if |v| is within halfWidth, and v unchanged otherwise.
// Values outside the band are not rescaled.
func Deadband(v, halfWidth float64) float64 {
	if math.Abs(v) <= halfWidth {
		return 0
	}
	return v
}

// ConstrainAbs limits v to [-limit, +limit], keeping its sign.
func ConstrainAbs(v, limit float64) float64 {
	if v < -limit {
		return -limit
	}
	if v > limit {
		return limit
	}
	return v
}
