package spatial

import (
	"math"
)

// NormalizeDegrees maps any finite angle into [0, 360)
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	// -tiny + 360 rounds to 360
	if d >= 360 {
		d = 0
	}
	return d
}

// AngularDifference returns the minimal circular distance between two angles
// in degrees. Result is in range [0, 180].
func AngularDifference(a, b float64) float64 {
	d := NormalizeDegrees(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// SignedAngularDifference returns the smallest signed rotation from angle1 to
// angle2 in degrees. Result is in range [-180, 180); positive is clockwise.
func SignedAngularDifference(angle1, angle2 float64) float64 {
	return NormalizeDegrees(angle2-angle1+180) - 180
}
