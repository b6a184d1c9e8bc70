package anim

import "math"

// Ease maps linear progress in [0, 1] to eased progress. Every Ease returns 0 at 0 and 1 at 1.
type Ease func(p float64) float64

// Linear is the identity ease.
func Linear(p float64) float64 { return p }

// Power2Out decelerates with a cubic curve.
func Power2Out(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}

// Power2In accelerates with a cubic curve.
func Power2In(p float64) float64 { return p * p * p }

// Power2InOut accelerates through the first half and decelerates through the second.
func Power2InOut(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}

// SineInOut is a gentle symmetric ease.
func SineInOut(p float64) float64 {
	return -(math.Cos(math.Pi*p) - 1) / 2
}

// ByName returns the ease registered under name, or Linear.
func ByName(name string) Ease {
	switch name {
	case "power2.out":
		return Power2Out
	case "power2.in":
		return Power2In
	case "power2.inOut":
		return Power2InOut
	case "sine.inOut":
		return SineInOut
	}
	return Linear
}
