package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fibonacci returns samples points spread near-uniformly over a sphere of the given radius,
// walking from +Y to -Y in golden-angle steps. Used for the backdrop point field.
func Fibonacci(samples int, radius float64) []r3.Vec {
	if samples <= 0 {
		return nil
	}
	if samples == 1 {
		return []r3.Vec{{Y: radius}}
	}
	golden := math.Pi * (3 - math.Sqrt(5))
	points := make([]r3.Vec, samples)
	for i := range points {
		y := 1 - float64(i)/float64(samples-1)*2
		ring := math.Sqrt(1 - y*y)
		sin, cos := math.Sincos(golden * float64(i))
		points[i] = r3.Scale(radius, r3.Vec{X: cos * ring, Y: y, Z: sin * ring})
	}
	return points
}
