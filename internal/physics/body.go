package physics

import "math"

// Body carries the inertial state of one drag target (a body's rotation or the camera pan).
// Velocity is in target units per tick. Apply moves the target; the world never stores the
// target's position itself, so other writers (tweens, decorative motion) compose with it.
type Body struct {
	Name     string
	Velocity [2]float64
	Held     bool
	Apply    func(dx, dy float64)
}

// NewBody returns a resting body that moves its target through apply.
func NewBody(name string, apply func(dx, dy float64)) *Body {
	return &Body{Name: name, Apply: apply}
}

// Speed is the magnitude of the velocity.
func (b *Body) Speed() float64 {
	return math.Hypot(b.Velocity[0], b.Velocity[1])
}

// Stop zeroes the velocity.
func (b *Body) Stop() {
	b.Velocity = [2]float64{}
}

// Push moves the target by (dx, dy) right away and makes that the new velocity. Only the latest
// push counts.
func (b *Body) Push(dx, dy float64) {
	if b.Apply != nil {
		b.Apply(dx, dy)
	}
	b.Velocity = [2]float64{dx, dy}
}
