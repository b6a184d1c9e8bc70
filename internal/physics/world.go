package physics

// Default integrator settings.
const (
	DefaultDamping = 0.92
	DefaultEpsilon = 1e-4
)

// World integrates inertia for a set of bodies once per frame tick.
type World struct {
	Damping float64
	Epsilon float64
	Bodies  []*Body
}

// NewWorld returns a world with the default damping and epsilon.
func NewWorld() *World {
	return &World{Damping: DefaultDamping, Epsilon: DefaultEpsilon}
}

// AddBody appends a body to the world. Order is preserved, so integration order is stable.
func (w *World) AddBody(b *Body) {
	w.Bodies = append(w.Bodies, b)
}

// Step advances every body that is not held by one tick: move the target by the velocity,
// damp the velocity, then snap it to exactly zero once its magnitude drops below Epsilon.
func (w *World) Step() {
	for _, b := range w.Bodies {
		if b.Held {
			continue
		}
		w.stepBody(b)
	}
}

func (w *World) stepBody(b *Body) {
	if b.Velocity == [2]float64{} {
		return
	}
	if b.Apply != nil {
		b.Apply(b.Velocity[0], b.Velocity[1])
	}
	b.Velocity[0] *= w.Damping
	b.Velocity[1] *= w.Damping
	if b.Speed() < w.Epsilon {
		b.Stop()
	}
}

// Moving reports whether any body still has velocity.
func (w *World) Moving() bool {
	for _, b := range w.Bodies {
		if b.Velocity != [2]float64{} {
			return true
		}
	}
	return false
}
