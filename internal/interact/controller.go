package interact

import (
	"math"

	"go.uber.org/zap"

	"sphere-panels/internal/camera"
	"sphere-panels/internal/logger"
	"sphere-panels/internal/physics"
	"sphere-panels/internal/world"
)

// Gesture targets other than a body index.
const (
	NoTarget     = -2 // motionless gesture; can still end as a tap
	CameraTarget = -1
)

// Config holds the controller's tunables.
type Config struct {
	DragThreshold     float64 // pixels from the press point before a gesture counts as a drag
	RotateSensitivity float64 // radians per pixel
	PanSensitivity    float64 // world units per pixel
	Damping           float64
	Epsilon           float64
	WheelZoom         float64 // distance factor per wheel step
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		DragThreshold:     3,
		RotateSensitivity: 0.006,
		PanSensitivity:    0.02,
		Damping:           physics.DefaultDamping,
		Epsilon:           physics.DefaultEpsilon,
		WheelZoom:         0.1,
	}
}

// Gate says which targets the current view allows.
type Gate interface {
	CanRotate(body int) bool
	CanPan() bool
}

type openGate struct{}

func (openGate) CanRotate(int) bool { return true }
func (openGate) CanPan() bool       { return true }

// Gesture is the state of the pointer between press and release.
type Gesture struct {
	Active  bool
	Target  int
	StartX  float64
	StartY  float64
	PrevX   float64
	PrevY   float64
	Dragged bool
}

// Controller turns pointer, touch and wheel input into body rotation and camera pan/zoom, with
// inertia after release. All methods run on the session's goroutine.
type Controller struct {
	cfg   Config
	world *world.World
	cam   *camera.Camera
	vp    camera.Viewport
	gate  Gate
	log   *logger.Logger

	inertia *physics.World
	bodies  []*physics.Body
	pan     *physics.Body

	gesture Gesture
	touch   touchState

	// OnTap is called when a gesture ends without ever passing the drag threshold.
	OnTap func(x, y float64)
	// OnGrab is called when a press lands on a body, before any movement.
	OnGrab func(body int)
}

// New returns a controller over w and cam. A nil gate allows everything.
func New(cfg Config, w *world.World, cam *camera.Camera, vp camera.Viewport, gate Gate, log *logger.Logger) *Controller {
	if gate == nil {
		gate = openGate{}
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		cfg:     cfg,
		world:   w,
		cam:     cam,
		vp:      vp,
		gate:    gate,
		log:     log,
		inertia: physics.NewWorld(),
		gesture: Gesture{Target: NoTarget},
	}
	c.inertia.Damping = cfg.Damping
	c.inertia.Epsilon = cfg.Epsilon
	for _, b := range w.Bodies {
		idx := b.Index
		pb := physics.NewBody("body", func(dx, dy float64) { w.Rotate(idx, dx, dy) })
		c.bodies = append(c.bodies, pb)
		c.inertia.AddBody(pb)
	}
	c.pan = physics.NewBody("camera", func(dx, dy float64) { cam.AddPan(dx, dy) })
	c.inertia.AddBody(c.pan)
	return c
}

// SetGate replaces the gate.
func (c *Controller) SetGate(g Gate) { c.gate = g }

// SetViewport updates the pixel size used to build rays.
func (c *Controller) SetViewport(vp camera.Viewport) { c.vp = vp }

// Tune changes damping and rotate sensitivity; zero values keep the current setting.
func (c *Controller) Tune(damping, sensitivity float64) {
	if damping > 0 && damping < 1 {
		c.cfg.Damping = damping
		c.inertia.Damping = damping
	}
	if sensitivity > 0 {
		c.cfg.RotateSensitivity = sensitivity
	}
}

// Config returns the current tuning.
func (c *Controller) Config() Config { return c.cfg }

// Gesture returns a copy of the current gesture.
func (c *Controller) Gesture() Gesture { return c.gesture }

// Velocity returns body's stored inertial velocity.
func (c *Controller) Velocity(body int) [2]float64 {
	if body < 0 || body >= len(c.bodies) {
		return [2]float64{}
	}
	return c.bodies[body].Velocity
}

// PanVelocity returns the camera pan's stored velocity.
func (c *Controller) PanVelocity() [2]float64 { return c.pan.Velocity }

// Held reports whether body is the target of the active gesture.
func (c *Controller) Held(body int) bool {
	return body >= 0 && body < len(c.bodies) && c.bodies[body].Held
}

// StopBody drops body's inertia, e.g. when a tween takes over its rotation.
func (c *Controller) StopBody(body int) {
	if body >= 0 && body < len(c.bodies) {
		c.bodies[body].Stop()
	}
}

// PointerDown starts a gesture at pixel (x, y). A press while a gesture is already active ends
// that gesture exactly as a pointer-up would (a tap if it never dragged) and starts nothing.
func (c *Controller) PointerDown(x, y float64) {
	if c.gesture.Active {
		c.end(true)
		return
	}
	c.gesture = Gesture{Active: true, Target: NoTarget, StartX: x, StartY: y, PrevX: x, PrevY: y}

	ray := c.cam.PixelRay(c.vp, x, y)
	if body, ok := c.world.PickBody(ray, c.gate.CanRotate); ok {
		c.gesture.Target = body
		c.bodies[body].Stop()
		c.bodies[body].Held = true
		if c.OnGrab != nil {
			c.OnGrab(body)
		}
	} else if c.gate.CanPan() {
		c.gesture.Target = CameraTarget
		c.pan.Stop()
		c.pan.Held = true
	}
	c.log.Debug("gesture start", zap.Int("target", c.gesture.Target), zap.Float64("x", x), zap.Float64("y", y))
}

// PointerMove continues the gesture. Moves without an active gesture are ignored.
func (c *Controller) PointerMove(x, y float64) {
	g := &c.gesture
	if !g.Active {
		return
	}
	dx, dy := x-g.PrevX, y-g.PrevY
	g.PrevX, g.PrevY = x, y
	if math.Hypot(x-g.StartX, y-g.StartY) > c.cfg.DragThreshold {
		g.Dragged = true
	}

	switch {
	case g.Target >= 0:
		if !c.gate.CanRotate(g.Target) {
			return
		}
		s := c.cfg.RotateSensitivity
		c.bodies[g.Target].Push(dx*s, dy*s)
	case g.Target == CameraTarget:
		if !c.gate.CanPan() {
			return
		}
		s := c.cfg.PanSensitivity
		c.pan.Push(-dx*s, dy*s)
	}
}

// PointerUp ends the gesture. It reports whether the gesture was a tap, in which case OnTap
// has been called with the release position.
func (c *Controller) PointerUp() bool {
	if !c.gesture.Active {
		return false
	}
	return c.end(true)
}

// PointerLeave ends the gesture like a release but never as a tap.
func (c *Controller) PointerLeave() {
	if c.gesture.Active {
		c.end(false)
	}
}

func (c *Controller) end(allowTap bool) bool {
	g := c.gesture
	if g.Target >= 0 {
		c.bodies[g.Target].Held = false
	}
	c.pan.Held = false
	c.gesture = Gesture{Target: NoTarget, Dragged: g.Dragged}
	c.log.Debug("gesture end", zap.Int("target", g.Target), zap.Bool("dragged", g.Dragged))

	tap := allowTap && !g.Dragged
	if tap && c.OnTap != nil {
		c.OnTap(g.PrevX, g.PrevY)
	}
	return tap
}

// Wheel zooms the camera; positive steps move it closer.
func (c *Controller) Wheel(steps float64) {
	if steps == 0 || !c.gate.CanPan() {
		return
	}
	c.cam.Zoom(math.Max(0.1, 1-steps*c.cfg.WheelZoom))
}

// FrameTick integrates inertia for every target that is not being dragged and keeps the pan
// inside its bounds.
func (c *Controller) FrameTick() {
	c.inertia.Step()
	c.cam.ClampPan()
}
