package view

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// FaceRotation returns Euler angles (X, Y; Z kept from current) for a rotation group so that
// the body-space direction c ends up pointing along u, choosing of the two solutions the one
// closest to current and expressing each angle as the nearest equivalent of current.
// Rotation order is X·Y (Z is assumed zero, which drags never change).
func FaceRotation(c, u, current r3.Vec) (r3.Vec, bool) {
	c, u = r3.Unit(c), r3.Unit(u)
	h := math.Hypot(c.X, c.Z)

	var yaws []float64
	if h < 1e-9 {
		yaws = []float64{current.Y}
	} else {
		ratio := math.Max(-1, math.Min(1, u.X/h))
		base := math.Atan2(c.Z, c.X)
		spread := math.Acos(ratio)
		yaws = []float64{base + spread, base - spread}
	}

	best, bestCost := r3.Vec{}, math.Inf(1)
	for _, ay := range yaws {
		sin, cos := math.Sincos(ay)
		v := r3.Vec{X: c.X*cos + c.Z*sin, Y: c.Y, Z: -c.X*sin + c.Z*cos}
		if math.Abs(v.X-u.X) > 1e-6 {
			continue
		}
		ax := math.Atan2(u.Z, u.Y) - math.Atan2(v.Z, v.Y)
		cand := r3.Vec{X: nearestAngle(current.X, ax), Y: nearestAngle(current.Y, ay), Z: current.Z}
		cost := math.Abs(cand.X-current.X) + math.Abs(cand.Y-current.Y)
		if cost < bestCost {
			best, bestCost = cand, cost
		}
	}
	return best, !math.IsInf(bestCost, 1)
}

// nearestAngle returns the angle equivalent to target (mod 2π) closest to from.
func nearestAngle(from, target float64) float64 {
	d := math.Remainder(target-from, 2*math.Pi)
	return from + d
}
