package camera

import (
	"cmp"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is where the camera sits and what it looks at.
type Pose struct {
	Position r3.Vec
	Target   r3.Vec
}

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Bounds is an axis-aligned rectangle for the pan offset.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Camera is a perspective camera with a fixed base pose, a 2-D pan offset and a zoom distance.
// Current is what the renderer and the hit tester use; the view machine tweens it between the
// resting pose and detail poses.
type Camera struct {
	Base    Pose
	Current Pose
	Up      r3.Vec
	FovY    float64 // degrees
	Aspect  float64
	Near    float64
	Far     float64

	Pan       r3.Vec // X and Y used
	PanBounds Bounds

	Distance    float64
	MinDistance float64
	MaxDistance float64
}

// New returns a camera at base with the given vertical field of view. Distance starts at the
// base distance and may range from half to twice of it until SetDistanceLimits says otherwise.
func New(base Pose, fovY, aspect float64) *Camera {
	d := r3.Norm(r3.Sub(base.Position, base.Target))
	c := &Camera{
		Base:        base,
		Current:     base,
		Up:          r3.Vec{Y: 1},
		FovY:        fovY,
		Aspect:      aspect,
		Near:        0.1,
		Far:         1000,
		PanBounds:   Bounds{MinX: -10, MaxX: 10, MinY: -10, MaxY: 10},
		Distance:    d,
		MinDistance: d / 2,
		MaxDistance: d * 2,
	}
	return c
}

// SetDistanceLimits sets the zoom range and clamps the current distance into it.
func (c *Camera) SetDistanceLimits(min, max float64) {
	c.MinDistance, c.MaxDistance = min, max
	c.Distance = Clamp(c.Distance, min, max)
}

// Rest returns the overview pose: base target shifted by the pan offset, viewed from Distance
// along the base viewing direction.
func (c *Camera) Rest() Pose {
	target := r3.Add(c.Base.Target, r3.Vec{X: c.Pan.X, Y: c.Pan.Y})
	back := r3.Sub(c.Base.Position, c.Base.Target)
	if r3.Norm(back) == 0 {
		back = r3.Vec{Z: 1}
	}
	return Pose{
		Target:   target,
		Position: r3.Add(target, r3.Scale(c.Distance, r3.Unit(back))),
	}
}

// AddPan shifts the pan offset and clamps it to PanBounds.
func (c *Camera) AddPan(dx, dy float64) {
	c.Pan.X = Clamp(c.Pan.X+dx, c.PanBounds.MinX, c.PanBounds.MaxX)
	c.Pan.Y = Clamp(c.Pan.Y+dy, c.PanBounds.MinY, c.PanBounds.MaxY)
}

// ClampPan pulls the pan offset back inside PanBounds.
func (c *Camera) ClampPan() {
	c.AddPan(0, 0)
}

// Zoom multiplies Distance by factor, clamped to the distance limits.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 || math.IsNaN(factor) {
		return
	}
	c.Distance = Clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Basis returns the camera's forward, right and up unit vectors for the current pose.
func (c *Camera) Basis() (forward, right, up r3.Vec) {
	forward = r3.Sub(c.Current.Target, c.Current.Position)
	if r3.Norm(forward) == 0 {
		forward = r3.Vec{Z: -1}
	}
	forward = r3.Unit(forward)
	right = r3.Cross(forward, c.Up)
	if r3.Norm(right) < 1e-9 {
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up = r3.Unit(r3.Cross(right, forward))
	return forward, right, up
}

// Ray returns the world ray through a point given in normalized device coordinates
// (x right, y up, both in [-1, 1]).
func (c *Camera) Ray(ndcX, ndcY float64) Ray {
	forward, right, up := c.Basis()
	tanHalf := math.Tan(c.FovY * math.Pi / 360)
	dir := r3.Add(forward, r3.Add(
		r3.Scale(ndcX*tanHalf*c.Aspect, right),
		r3.Scale(ndcY*tanHalf, up),
	))
	return Ray{Origin: c.Current.Position, Dir: r3.Unit(dir)}
}

// Project maps a world point to NDC. ok is false for points behind the camera.
func (c *Camera) Project(p r3.Vec) (x, y float64, ok bool) {
	forward, right, up := c.Basis()
	rel := r3.Sub(p, c.Current.Position)
	z := r3.Dot(rel, forward)
	if z <= 0 {
		return 0, 0, false
	}
	tanHalf := math.Tan(c.FovY * math.Pi / 360)
	x = r3.Dot(rel, right) / (z * tanHalf * c.Aspect)
	y = r3.Dot(rel, up) / (z * tanHalf)
	return x, y, true
}

// Clamp limits v to [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
