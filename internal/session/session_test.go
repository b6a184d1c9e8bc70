package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sphere-panels/internal/config"
	"sphere-panels/internal/events"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/view"
	"sphere-panels/internal/world"
)

const dt = 1.0 / 60

func newSession(t *testing.T) *Session {
	cfg := config.Default()
	cfg.Interaction.IdleSpin = 0
	cfg.Backdrop.Samples = 0
	s, err := New(cfg, nil)
	require.NoError(t, err)
	return s
}

func (s *Session) ticks(n int) {
	for i := 0; i < n; i++ {
		s.FrameTick(dt)
	}
}

func TestSession_TapEntersDetailAndEscapeReturns(t *testing.T) {
	s := newSession(t)
	rec := events.Record(s.Bus)
	rest := s.Camera.Rest()

	s.PointerDown(640, 360)
	s.PointerUp()
	require.Equal(t, view.TransitioningToDetail, s.View.State())
	sel, ok := s.View.Selected()
	require.True(t, ok)
	assert.Equal(t, world.Ref{Body: 0, Panel: 2}, sel)

	s.ticks(70)
	require.Equal(t, "detail", s.State())

	// dragging the selected body still works in detail
	before := s.World.Rotation(0)
	s.PointerDown(640, 360)
	s.PointerMove(740, 360)
	s.PointerUp()
	assert.InDelta(t, before.Y+0.6, s.World.Rotation(0).Y, 1e-9)
	assert.Equal(t, "detail", s.State())

	require.True(t, s.Escape())
	s.ticks(70)
	require.Equal(t, view.Overview, s.View.State())
	assert.Equal(t, rest, s.Camera.Current)
	assert.Equal(t, 1.0, s.World.Graph.Node(s.World.Bodies[0].Node).Opacity)
	assert.Equal(t, []events.Selection{
		{Body: 0, Panel: 2, Entering: true},
		{Body: 0, Panel: 2, Entering: false},
	}, rec.Selections)
}

func TestSession_TapOnEmptySpaceDoesNothing(t *testing.T) {
	s := newSession(t)
	s.PointerDown(5, 5)
	s.PointerUp()
	assert.Equal(t, view.Overview, s.View.State())
}

func TestSession_Hover(t *testing.T) {
	s := newSession(t)
	rec := events.Record(s.Bus)

	s.PointerMove(640, 360)
	ref, ok := s.Hovered()
	require.True(t, ok)
	assert.Equal(t, world.Ref{Body: 0, Panel: 2}, ref)
	assert.True(t, s.World.Panel(ref).Hovered)

	s.PointerMove(641, 360)
	s.PointerMove(5, 5)
	_, ok = s.Hovered()
	assert.False(t, ok)
	assert.False(t, s.World.Panel(ref).Hovered)
	assert.Equal(t, []events.Hover{
		{Body: 0, Panel: 2, Entering: true},
		{Body: 0, Panel: 2, Entering: false},
	}, rec.Hovers)
}

func TestSession_Resize(t *testing.T) {
	s := newSession(t)
	s.Resize(800, 800)
	assert.Equal(t, 1.0, s.Camera.Aspect)
	s.Resize(0, 100)
	assert.Equal(t, 800, s.Viewport.Width)
}

func TestSession_QueuedTunablesApplyOnTick(t *testing.T) {
	s := newSession(t)
	cfg := s.Config()
	cfg.Interaction.Damping = 0.5
	cfg.HitTest.FrontFacingMargin = 0.3
	s.QueueTunables(cfg)
	cfg.Interaction.Damping = 0.8
	s.QueueTunables(cfg)
	assert.Equal(t, 0.92, s.Input.Config().Damping)

	s.FrameTick(dt)
	assert.Equal(t, 0.8, s.Input.Config().Damping)
	assert.Equal(t, 0.3, s.Resolver.Margin)
	assert.Equal(t, uint64(1), s.Frames())
}

func TestSession_Snapshot(t *testing.T) {
	cfg := config.Default()
	second := cfg.Bodies[0]
	second.Position = config.Vec3{25, 0, 0}
	second.Opacity = config.Float(0.5)
	cfg.Bodies = append(cfg.Bodies, second)
	s, err := New(cfg, nil)
	require.NoError(t, err)

	f := s.Snapshot()
	assert.Equal(t, "overview", f.State)
	assert.Len(t, f.Stars, 2000)
	panels := map[world.Ref]bool{}
	for _, it := range f.Items {
		if it.Body == 1 {
			assert.InDelta(t, 0.5, it.Opacity, 1e-12)
		}
		if it.Role == scenegraph.RoleFiller {
			assert.Equal(t, -1, it.Panel)
			continue
		}
		require.GreaterOrEqual(t, it.Panel, 0)
		panels[world.Ref{Body: it.Body, Panel: it.Panel}] = true
	}
	assert.Len(t, panels, 14)

	require.True(t, s.Select(world.Ref{Body: 0, Panel: 0}))
	s.ticks(70)
	for _, it := range s.Snapshot().Items {
		assert.NotEqual(t, 1, it.Body, "hidden body is not drawn")
	}
}

func TestSession_IdleSpinSkipsHeldBody(t *testing.T) {
	cfg := config.Default()
	cfg.Interaction.IdleSpin = 0.01
	cfg.Backdrop.Samples = 0
	s, err := New(cfg, nil)
	require.NoError(t, err)

	start := s.World.Rotation(0)
	s.ticks(10)
	assert.InDelta(t, start.Y+0.1, s.World.Rotation(0).Y, 1e-9)

	s.PointerDown(640, 360)
	require.True(t, s.Input.Held(0))
	held := s.World.Rotation(0)
	s.ticks(10)
	assert.Equal(t, held, s.World.Rotation(0))

	// leaving ends the gesture without a tap; the spin resumes
	s.PointerLeave()
	assert.False(t, s.Input.Held(0))
	s.ticks(1)
	assert.InDelta(t, held.Y+0.01, s.World.Rotation(0).Y, 1e-9)
	assert.Equal(t, view.Overview, s.View.State())
}
