package view

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
	"go.uber.org/zap"

	"sphere-panels/internal/anim"
	"sphere-panels/internal/camera"
	"sphere-panels/internal/events"
	"sphere-panels/internal/logger"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/world"
)

// State is the top-level view mode.
type State int

const (
	Overview State = iota
	TransitioningToDetail
	Detail
	TransitioningToOverview
)

func (s State) String() string {
	switch s {
	case Overview:
		return "overview"
	case TransitioningToDetail:
		return "to-detail"
	case Detail:
		return "detail"
	case TransitioningToOverview:
		return "to-overview"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Timeline groups and keys.
const (
	groupTransition = "transition"
	groupHighlight  = "highlight"
	groupFace       = "face"
	keyCamera       = "camera"
	keyFace         = "face"
	keyLabel        = "label"
)

// Config holds durations and target levels for transitions.
type Config struct {
	TransitionDuration float64 // camera move and fade, seconds
	DetailDistance     float64 // camera distance from the selected body's center, in body radii
	FadedOpacity       float64
	ShrinkScale        float64

	HighlightDuration float64
	SelectedScale     float64

	FaceCamera   bool
	FaceDuration float64
	LiftLabel    bool
}

// DefaultConfig returns the reference timings.
func DefaultConfig() Config {
	return Config{
		TransitionDuration: 1,
		DetailDistance:     1.8,
		FadedOpacity:       0,
		ShrinkScale:        0.5,
		HighlightDuration:  0.5,
		SelectedScale:      1.2,
		FaceCamera:         true,
		FaceDuration:       1.5,
		LiftLabel:          true,
	}
}

// Inertia lets the machine stop a body's coasting when a tween takes over its rotation.
type Inertia interface {
	StopBody(body int)
}

// Machine owns the view mode, the selection, and the camera and visibility changes that go
// with them. It never waits on animation: Tick polls the timeline and completes transitions.
type Machine struct {
	cfg   Config
	state State
	sel   world.Ref

	world   *world.World
	cam     *camera.Camera
	tl      *anim.Timeline
	bus     *events.Bus
	log     *logger.Logger
	inertia Inertia

	restOpacity []float64
	liftPending bool
}

// New returns a machine in Overview.
func New(cfg Config, w *world.World, cam *camera.Camera, tl *anim.Timeline, bus *events.Bus, log *logger.Logger) *Machine {
	if log == nil {
		log = logger.Nop()
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Machine{cfg: cfg, world: w, cam: cam, tl: tl, bus: bus, log: log, sel: world.Ref{Body: -1, Panel: -1}}
}

// SetInertia wires the interaction controller so face-the-camera can stop a coasting body.
func (m *Machine) SetInertia(i Inertia) { m.inertia = i }

// State returns the current mode.
func (m *Machine) State() State { return m.state }

// Selected returns the selected panel; ok is false in Overview.
func (m *Machine) Selected() (world.Ref, bool) {
	return m.sel, m.sel.Body >= 0
}

// CanRotate reports whether body may be dragged: any body in Overview, only the selected one otherwise.
func (m *Machine) CanRotate(body int) bool {
	return m.state == Overview || body == m.sel.Body
}

// CanPan reports whether the camera may be panned or zoomed.
func (m *Machine) CanPan() bool {
	return m.state == Overview
}

// Candidate reports whether body's panels may be hit-tested.
func (m *Machine) Candidate(body int) bool {
	return m.state == Overview || body == m.sel.Body
}

// Spinning reports whether body receives idle spin.
func (m *Machine) Spinning(body int) bool {
	return m.state == Overview || body != m.sel.Body
}

// Tap handles a tap that resolved to ref (hit) or to nothing. It reports whether the tap
// changed anything; taps during a transition are dropped.
func (m *Machine) Tap(ref world.Ref, hit bool) bool {
	switch m.state {
	case TransitioningToDetail, TransitioningToOverview:
		m.log.Debug("tap dropped during transition", zap.Stringer("state", m.state))
		return false
	case Overview:
		if !hit {
			return false
		}
		return m.enter(ref)
	case Detail:
		if !hit || ref.Body != m.sel.Body {
			m.exit()
			return true
		}
		if ref == m.sel {
			return false
		}
		return m.switchPanel(ref)
	}
	return false
}

// Select is a programmatic tap on ref.
func (m *Machine) Select(ref world.Ref) bool {
	if m.world.Panel(ref) == nil {
		return false
	}
	return m.Tap(ref, true)
}

// Escape leaves Detail. It is ignored in other states.
func (m *Machine) Escape() bool {
	if m.state != Detail {
		return false
	}
	m.exit()
	return true
}

// Close is the close affordance; it behaves like a tap on empty space.
func (m *Machine) Close() bool {
	return m.Escape()
}

// Tick completes transitions whose animations have finished and keeps the overview camera at
// its resting pose. Call it after the timeline has been advanced for the frame.
func (m *Machine) Tick() {
	switch m.state {
	case Overview:
		if !m.tl.Busy(groupTransition) {
			m.cam.Current = m.cam.Rest()
		}
	case TransitioningToDetail:
		if m.tl.Busy(groupTransition) {
			return
		}
		for _, b := range m.world.Bodies {
			if b.Index != m.sel.Body {
				m.world.Graph.Node(b.Node).Visible = false
			}
		}
		m.setState(Detail)
	case Detail:
		if !m.liftPending || m.tl.Busy(groupFace) {
			return
		}
		m.liftPending = false
		if p := m.world.Panel(m.sel); p != nil {
			m.tl.Cancel(keyLabel)
			if err := m.world.LiftLabel(p); err != nil {
				m.log.Warn("lift label", zap.Error(err))
			}
		}
	case TransitioningToOverview:
		if m.tl.Busy(groupTransition) {
			return
		}
		m.tl.Finish(groupHighlight)
		for i, b := range m.world.Bodies {
			n := m.world.Graph.Node(b.Node)
			n.Visible = true
			n.Opacity = m.restOpacity[i]
			n.Pose.Scale = r3.Vec{X: 1, Y: 1, Z: 1}
		}
		m.cam.Current = m.cam.Rest()
		m.sel = world.Ref{Body: -1, Panel: -1}
		m.setState(Overview)
	}
}

func (m *Machine) setState(s State) {
	from := m.state
	m.state = s
	body := m.sel.Body
	m.log.Info("view", zap.Stringer("from", from), zap.Stringer("to", s), zap.Int("body", body))
	m.bus.PublishView(events.ViewChange{From: from.String(), To: s.String(), Body: body})
}

func (m *Machine) enter(ref world.Ref) bool {
	p := m.world.Panel(ref)
	if p == nil {
		return false
	}
	m.restOpacity = m.restOpacity[:0]
	for _, b := range m.world.Bodies {
		m.restOpacity = append(m.restOpacity, m.world.Graph.Node(b.Node).Opacity)
	}
	m.sel = ref
	m.setState(TransitioningToDetail)
	m.publishSelection(ref, true)

	center, radius := m.world.Sphere(ref.Body)
	back := m.backDirection()
	to := camera.Pose{Target: center, Position: r3.Add(center, r3.Scale(radius*m.cfg.DetailDistance, back))}
	m.tweenCamera(m.cam.Current, to, anim.Power2InOut)

	for _, b := range m.world.Bodies {
		if b.Index == ref.Body {
			continue
		}
		m.tweenBody(b, m.cfg.FadedOpacity, m.cfg.ShrinkScale)
	}
	m.highlight(ref.Body, ref.Panel)
	m.face(p)
	m.liftPending = m.cfg.LiftLabel
	return true
}

func (m *Machine) switchPanel(ref world.Ref) bool {
	p := m.world.Panel(ref)
	if p == nil {
		return false
	}
	m.returnLabel(m.world.Panel(m.sel))
	m.publishSelection(m.sel, false)
	m.sel = ref
	m.publishSelection(ref, true)
	m.log.Info("switch panel", zap.Int("body", ref.Body), zap.Int("panel", ref.Panel))
	m.highlight(ref.Body, ref.Panel)
	m.face(p)
	m.liftPending = m.cfg.LiftLabel
	return true
}

func (m *Machine) exit() {
	old := m.sel
	m.liftPending = false
	m.returnLabel(m.world.Panel(old))
	m.tl.Cancel(keyFace)
	m.setState(TransitioningToOverview)
	m.publishSelection(old, false)

	m.tweenCamera(m.cam.Current, m.cam.Rest(), anim.Power2InOut)
	for i, b := range m.world.Bodies {
		if b.Index == old.Body {
			continue
		}
		m.world.Graph.Node(b.Node).Visible = true
		m.tweenBody(b, m.restOpacity[i], 1)
	}
	m.highlight(old.Body, -1)
}

func (m *Machine) publishSelection(ref world.Ref, entering bool) {
	if p := m.world.Panel(ref); p != nil {
		p.Selected = entering
	}
	m.bus.PublishSelection(events.Selection{Body: ref.Body, Panel: ref.Panel, Entering: entering})
}

// backDirection is the unit vector from the camera's target toward the camera at rest.
func (m *Machine) backDirection() r3.Vec {
	back := r3.Sub(m.cam.Base.Position, m.cam.Base.Target)
	if r3.Norm(back) == 0 {
		return r3.Vec{Z: 1}
	}
	return r3.Unit(back)
}

func (m *Machine) tweenCamera(from, to camera.Pose, ease anim.Ease) {
	cam := m.cam
	m.tl.Start(keyCamera, groupTransition, m.cfg.TransitionDuration, ease, func(e float64) {
		if e >= 1 {
			cam.Current = to
			return
		}
		cam.Current = camera.Pose{
			Position: r3.Add(from.Position, r3.Scale(e, r3.Sub(to.Position, from.Position))),
			Target:   r3.Add(from.Target, r3.Scale(e, r3.Sub(to.Target, from.Target))),
		}
	})
}

func (m *Machine) tweenBody(b *world.Body, opacity, scale float64) {
	n := m.world.Graph.Node(b.Node)
	key := fmt.Sprintf("body.%d", b.Index)
	fromOpacity, fromScale := n.Opacity, n.Pose.Scale.X
	m.tl.Start(key+".opacity", groupTransition, m.cfg.TransitionDuration, anim.Power2Out,
		anim.Value(fromOpacity, opacity, func(v float64) { n.Opacity = v }))
	m.tl.Start(key+".scale", groupTransition, m.cfg.TransitionDuration, anim.Power2Out,
		anim.Value(fromScale, scale, func(v float64) { n.Pose.Scale = r3.Vec{X: v, Y: v, Z: v} }))
}

// highlight eases every panel of body toward its level: the selected panel enlarged and bright,
// the rest dimmed. selected < 0 restores the resting level for all of them.
func (m *Machine) highlight(body, selected int) {
	if body < 0 || body >= len(m.world.Bodies) {
		return
	}
	for _, p := range m.world.Bodies[body].Panels {
		scale, emphasis := 1.0, world.RestEmphasis
		switch {
		case selected < 0:
		case p.Index == selected:
			scale, emphasis = m.cfg.SelectedScale, world.SelectedEmphasis
		default:
			emphasis = world.DimmedEmphasis
		}
		n := m.world.Graph.Node(p.Group)
		key := fmt.Sprintf("hl.%d.%d", p.Body, p.Index)
		m.tl.Start(key+".scale", groupHighlight, m.cfg.HighlightDuration, anim.Power2Out,
			anim.Value(n.Pose.Scale.X, scale, func(v float64) { n.Pose.Scale = r3.Vec{X: v, Y: v, Z: v} }))
		m.tl.Start(key+".emphasis", groupHighlight, m.cfg.HighlightDuration, anim.Power2Out,
			anim.Value(p.Emphasis, emphasis, func(v float64) { p.Emphasis = v }))
	}
}

// face turns the selected body so that p's center points back along the viewing direction.
func (m *Machine) face(p *world.Panel) {
	if !m.cfg.FaceCamera {
		return
	}
	if m.inertia != nil {
		m.inertia.StopBody(p.Body)
	}
	current := m.world.Rotation(p.Body)
	target, ok := FaceRotation(p.Center, m.backDirection(), current)
	if !ok {
		return
	}
	body := p.Body
	w := m.world
	m.tl.Start(keyFace, groupFace, m.cfg.FaceDuration, anim.Power2InOut,
		anim.Vec(current, target, func(v r3.Vec) { w.SetRotation(body, v) }))
}

// CancelFace abandons an in-flight face-the-camera turn, e.g. when the user grabs the body.
// The selected panel's label goes back onto its panel.
func (m *Machine) CancelFace(body int) {
	if body != m.sel.Body {
		return
	}
	m.tl.Cancel(keyFace)
	m.liftPending = false
	m.returnLabel(m.world.Panel(m.sel))
}

func (m *Machine) returnLabel(p *world.Panel) {
	if p == nil || !m.world.Lifted(p) {
		return
	}
	from, err := m.world.ReturnLabel(p)
	if err != nil {
		m.log.Warn("return label", zap.Error(err))
		return
	}
	n := m.world.Graph.Node(p.Label)
	to := p.LayerPose
	m.tl.Start(keyLabel, "label", m.cfg.HighlightDuration, anim.Power2Out, func(e float64) {
		n.Pose = lerpPose(from, to, e)
	})
}

func lerpPose(a, b scenegraph.Pose, e float64) scenegraph.Pose {
	if e >= 1 {
		return b
	}
	lerp := func(x, y r3.Vec) r3.Vec { return r3.Add(x, r3.Scale(e, r3.Sub(y, x))) }
	return scenegraph.Pose{
		Position: lerp(a.Position, b.Position),
		Rotation: lerp(a.Rotation, b.Rotation),
		Scale:    lerp(a.Scale, b.Scale),
	}
}
