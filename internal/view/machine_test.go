package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"sphere-panels/internal/anim"
	"sphere-panels/internal/camera"
	"sphere-panels/internal/events"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/world"
)

type harness struct {
	w   *world.World
	cam *camera.Camera
	tl  *anim.Timeline
	bus *events.Bus
	rec *events.Recorder
	m   *Machine
}

func newHarness(t *testing.T) *harness {
	opts := world.DefaultOptions()
	opts.IdleSpin = 0
	opts.BackdropSamples = 0
	second := world.DefaultBody()
	second.Position = r3.Vec{X: 30}
	second.Radius = 5
	second.Opacity = 0.7
	opts.Bodies = append(opts.Bodies, second)
	w, err := world.Build(opts)
	require.NoError(t, err)

	h := &harness{
		w:   w,
		cam: camera.New(camera.Pose{Position: r3.Vec{Z: 25}}, 75, 16.0/9.0),
		tl:  anim.NewTimeline(),
		bus: events.NewBus(),
	}
	h.rec = events.Record(h.bus)
	h.m = New(DefaultConfig(), w, h.cam, h.tl, h.bus, nil)
	return h
}

func (h *harness) run(seconds float64) {
	const dt = 1.0 / 60
	for t := 0.0; t < seconds; t += dt {
		h.tl.Advance(dt)
		h.m.Tick()
	}
}

func TestMachine_RoundTripRestoresOverview(t *testing.T) {
	h := newHarness(t)
	h.cam.AddPan(1.5, -0.5)
	h.cam.Zoom(0.8)
	h.run(0.1)
	rest := h.cam.Rest()
	require.Equal(t, rest, h.cam.Current)

	ref := world.Ref{Body: 0, Panel: 2}
	require.True(t, h.m.Tap(ref, true))
	assert.Equal(t, TransitioningToDetail, h.m.State())
	assert.False(t, h.m.CanPan())
	assert.True(t, h.m.CanRotate(0))
	assert.False(t, h.m.CanRotate(1))
	assert.False(t, h.m.Tap(world.Ref{Body: 0, Panel: 1}, true), "taps are dropped mid-transition")
	assert.False(t, h.m.Escape())

	h.run(1.1)
	require.Equal(t, Detail, h.m.State())
	assert.False(t, h.w.Graph.Node(h.w.Bodies[1].Node).Visible)
	assert.True(t, h.m.Candidate(0))
	assert.False(t, h.m.Candidate(1))
	assert.False(t, h.m.Spinning(0))

	h.run(1)
	p := h.w.Panel(ref)
	assert.True(t, h.w.Lifted(p))

	require.True(t, h.m.Tap(world.Ref{}, false))
	assert.Equal(t, TransitioningToOverview, h.m.State())
	assert.False(t, h.w.Lifted(p))
	assert.True(t, h.w.Graph.Node(h.w.Bodies[1].Node).Visible)

	h.run(1.1)
	require.Equal(t, Overview, h.m.State())
	assert.Equal(t, 1.0, h.w.Graph.Node(h.w.Bodies[0].Node).Opacity)
	assert.Equal(t, 0.7, h.w.Graph.Node(h.w.Bodies[1].Node).Opacity)
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, h.w.Graph.Node(h.w.Bodies[1].Node).Pose.Scale)
	assert.Equal(t, rest, h.cam.Current)
	for _, q := range h.w.Bodies[0].Panels {
		assert.Equal(t, world.RestEmphasis, q.Emphasis)
		assert.False(t, q.Selected)
		assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, h.w.Graph.Node(q.Group).Pose.Scale)
	}
	assert.Equal(t, p.LayerPose, h.w.Graph.Node(p.Label).Pose)
	_, ok := h.m.Selected()
	assert.False(t, ok)

	var path []string
	for _, v := range h.rec.Views {
		path = append(path, v.To)
	}
	assert.Equal(t, []string{"to-detail", "detail", "to-overview", "overview"}, path)
	assert.Equal(t, []events.Selection{
		{Body: 0, Panel: 2, Entering: true},
		{Body: 0, Panel: 2, Entering: false},
	}, h.rec.Selections)
}

func TestMachine_DetailFramesSelectedBody(t *testing.T) {
	h := newHarness(t)
	center, radius := h.w.Sphere(0)
	h.m.Select(world.Ref{Body: 0, Panel: 0})
	h.run(1.1)
	require.Equal(t, Detail, h.m.State())
	assert.Equal(t, center, h.cam.Current.Target)
	want := r3.Add(center, r3.Vec{Z: radius * DefaultConfig().DetailDistance})
	assert.InDelta(t, want.Z, h.cam.Current.Position.Z, 1e-9)
	assert.InDelta(t, want.X, h.cam.Current.Position.X, 1e-9)
}

func TestMachine_FaceCameraTurnsPanelToViewer(t *testing.T) {
	h := newHarness(t)
	ref := world.Ref{Body: 0, Panel: 0}
	h.m.Select(ref)
	h.run(2)

	b := h.w.Bodies[0]
	xf, err := h.w.Graph.WorldTransform(b.Spin)
	require.NoError(t, err)
	dir := r3.Unit(xf.ApplyDir(h.w.Panel(ref).Center))
	assert.InDelta(t, 0, dir.X, 1e-9)
	assert.InDelta(t, 0, dir.Y, 1e-9)
	assert.InDelta(t, 1, dir.Z, 1e-9)

	p := h.w.Panel(ref)
	assert.Equal(t, world.SelectedEmphasis, p.Emphasis)
	assert.Equal(t, world.DimmedEmphasis, h.w.Bodies[0].Panels[1].Emphasis)
	assert.Equal(t, 1.2, h.w.Graph.Node(p.Group).Pose.Scale.X)
}

func TestMachine_SwitchPanelInDetail(t *testing.T) {
	h := newHarness(t)
	h.m.Select(world.Ref{Body: 0, Panel: 0})
	h.run(2.6)
	h.rec.Reset()

	assert.False(t, h.m.Tap(world.Ref{Body: 0, Panel: 0}, true), "same panel")
	require.True(t, h.m.Tap(world.Ref{Body: 0, Panel: 4}, true))
	assert.Equal(t, Detail, h.m.State())
	assert.False(t, h.w.Lifted(h.w.Panel(world.Ref{Body: 0, Panel: 0})))
	assert.Equal(t, []events.Selection{
		{Body: 0, Panel: 0, Entering: false},
		{Body: 0, Panel: 4, Entering: true},
	}, h.rec.Selections)
	assert.Empty(t, h.rec.Views)

	h.run(2)
	sel, ok := h.m.Selected()
	require.True(t, ok)
	assert.Equal(t, world.Ref{Body: 0, Panel: 4}, sel)
	assert.Equal(t, 1.0, h.w.Graph.Node(h.w.Panel(world.Ref{Body: 0, Panel: 0}).Group).Pose.Scale.X)
	assert.True(t, h.w.Lifted(h.w.Panel(sel)))
}

func TestMachine_GrabCancelsFace(t *testing.T) {
	h := newHarness(t)
	h.m.Select(world.Ref{Body: 0, Panel: 6})
	h.run(0.3)
	require.True(t, h.tl.Running(keyFace))
	h.m.CancelFace(1)
	assert.True(t, h.tl.Running(keyFace), "other bodies do not cancel")
	h.m.CancelFace(0)
	assert.False(t, h.tl.Running(keyFace))

	turned := h.w.Rotation(0)
	h.run(2)
	assert.Equal(t, turned, h.w.Rotation(0))
	assert.False(t, h.w.Lifted(h.w.Panel(world.Ref{Body: 0, Panel: 6})))
}

func TestMachine_OverviewIgnoresMissesAndEscape(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.m.Tap(world.Ref{}, false))
	assert.False(t, h.m.Escape())
	assert.False(t, h.m.Close())
	assert.False(t, h.m.Select(world.Ref{Body: 3, Panel: 0}))
	assert.Equal(t, Overview, h.m.State())
	assert.True(t, h.m.CanRotate(1))
	assert.True(t, h.m.CanPan())
	assert.Empty(t, h.rec.Views)
}

func TestFaceRotation(t *testing.T) {
	unit := func(t *rapid.T, label string) r3.Vec {
		for {
			v := r3.Vec{
				X: rapid.Float64Range(-1, 1).Draw(t, label+".x"),
				Y: rapid.Float64Range(-1, 1).Draw(t, label+".y"),
				Z: rapid.Float64Range(-1, 1).Draw(t, label+".z"),
			}
			if n := r3.Norm(v); n > 0.1 && n <= 1 {
				return r3.Scale(1/n, v)
			}
		}
	}
	rapid.Check(t, func(t *rapid.T) {
		c := unit(t, "c")
		current := r3.Vec{
			X: rapid.Float64Range(-10, 10).Draw(t, "rx"),
			Y: rapid.Float64Range(-10, 10).Draw(t, "ry"),
		}
		rot, ok := FaceRotation(c, r3.Vec{Z: 1}, current)
		if math.Hypot(c.X, c.Z) < 1e-6 {
			return
		}
		require.True(t, ok)
		assert.LessOrEqual(t, math.Abs(rot.X-current.X), math.Pi+1e-9)
		assert.LessOrEqual(t, math.Abs(rot.Y-current.Y), math.Pi+1e-9)

		pose := scenegraph.Identity()
		pose.Rotation = rot
		got := pose.Transform().ApplyDir(c)
		assert.InDelta(t, 0, got.X, 1e-9)
		assert.InDelta(t, 0, got.Y, 1e-9)
		assert.InDelta(t, 1, got.Z, 1e-9)
	})
}

func TestNearestAngle(t *testing.T) {
	assert.InDelta(t, 2*math.Pi+0.1, nearestAngle(6, 0.1), 1e-12)
	assert.InDelta(t, -0.1, nearestAngle(0, 2*math.Pi-0.1), 1e-12)
}
