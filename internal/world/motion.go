package world

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/camera"
	"sphere-panels/internal/scenegraph"
)

// Tick advances decorative motion by dt seconds and applies one tick of idle spin to every body
// for which spinning returns true. It only writes the float nodes, the rotation groups' Y angle
// (additively) and the backdrop, so user rotation and view tweens are never overwritten.
func (w *World) Tick(dt float64, spinning func(body int) bool) {
	w.Time += dt
	for _, b := range w.Bodies {
		n := w.Graph.Node(b.Float)
		m := b.Motion
		n.Pose.Position = r3.Vec{Y: m.FloatAmplitude * math.Sin(m.FloatSpeed*w.Time+m.Phase)}
		s := 1 + m.BreatheAmplitude*math.Sin(m.BreatheSpeed*w.Time+m.Phase)
		n.Pose.Scale = r3.Vec{X: s, Y: s, Z: s}

		if w.IdleSpin != 0 && (spinning == nil || spinning(b.Index)) {
			w.Graph.Node(b.Spin).Pose.Rotation.Y += w.IdleSpin
		}
	}
	w.Graph.Node(w.Backdrop.Node).Pose.Rotation.Y += w.Backdrop.Spin
}

// Rotate turns body's rotation group: dx about Y, dy about X, matching a horizontal and
// vertical drag.
func (w *World) Rotate(body int, dx, dy float64) {
	if body < 0 || body >= len(w.Bodies) {
		return
	}
	r := &w.Graph.Node(w.Bodies[body].Spin).Pose.Rotation
	r.Y += dx
	r.X += dy
}

// Rotation returns the Euler angles of body's rotation group.
func (w *World) Rotation(body int) r3.Vec {
	return w.Graph.Node(w.Bodies[body].Spin).Pose.Rotation
}

// SetRotation replaces the Euler angles of body's rotation group.
func (w *World) SetRotation(body int, rot r3.Vec) {
	w.Graph.Node(w.Bodies[body].Spin).Pose.Rotation = rot
}

// Sphere returns the world-space center and radius of body's outer surface.
func (w *World) Sphere(body int) (center r3.Vec, radius float64) {
	b := w.Bodies[body]
	t, err := w.Graph.WorldTransform(b.Spin)
	if err != nil {
		return r3.Vec{}, 0
	}
	scale := r3.Norm(t.Basis.VecCol(0))
	return t.Origin, b.Radius * scale
}

// PickBody intersects ray with the bounding sphere of every visible, not fully transparent body
// accepted by allow and returns the nearest. This is the cheap outer-surface test used to start a drag.
func (w *World) PickBody(ray camera.Ray, allow func(body int) bool) (int, bool) {
	best, bestT := -1, math.Inf(1)
	for _, b := range w.Bodies {
		if allow != nil && !allow(b.Index) {
			continue
		}
		if !w.Graph.IsVisible(b.Spin) || w.Graph.WorldOpacity(b.Node) == 0 {
			continue
		}
		c, r := w.Sphere(b.Index)
		if t, ok := raySphere(ray, c, r); ok && t < bestT {
			best, bestT = b.Index, t
		}
	}
	return best, best >= 0
}

// raySphere returns the nearest non-negative ray parameter at which ray meets the sphere.
func raySphere(ray camera.Ray, center r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(ray.Origin, center)
	b := r3.Dot(oc, ray.Dir)
	c := r3.Norm2(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t >= 0 {
		return t, true
	}
	if t := -b + sq; t >= 0 {
		return t, true
	}
	return 0, false
}

// LiftLabel moves p's label layer into the focus slot, keeping where it is on screen.
func (w *World) LiftLabel(p *Panel) error {
	if p.Label == scenegraph.NoNode || w.Graph.Parent(p.Label) == w.Focus {
		return nil
	}
	return w.Graph.Reparent(p.Label, w.Focus)
}

// ReturnLabel puts p's label layer back under its panel, keeping its world transform. The
// returned pose is where it now sits; callers ease it back to p.LayerPose.
func (w *World) ReturnLabel(p *Panel) (scenegraph.Pose, error) {
	if p.Label == scenegraph.NoNode {
		return p.LayerPose, nil
	}
	if w.Graph.Parent(p.Label) != p.Group {
		if err := w.Graph.Reparent(p.Label, p.Group); err != nil {
			return scenegraph.Pose{}, err
		}
	}
	return w.Graph.Node(p.Label).Pose, nil
}

// Lifted reports whether p's label currently sits in the focus slot.
func (w *World) Lifted(p *Panel) bool {
	return p.Label != scenegraph.NoNode && w.Graph.Parent(p.Label) == w.Focus
}
