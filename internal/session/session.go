package session

import (
	"fmt"

	"go.uber.org/zap"

	"sphere-panels/internal/anim"
	"sphere-panels/internal/camera"
	"sphere-panels/internal/config"
	"sphere-panels/internal/events"
	"sphere-panels/internal/hittest"
	"sphere-panels/internal/interact"
	"sphere-panels/internal/logger"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/view"
	"sphere-panels/internal/world"
)

// Session is the single-threaded loop object. Input events and FrameTick are called from the
// same goroutine; the only cross-goroutine entry point is QueueTunables.
type Session struct {
	cfg config.Config
	log *logger.Logger

	World    *world.World
	Camera   *camera.Camera
	Viewport camera.Viewport
	Timeline *anim.Timeline
	Bus      *events.Bus
	Resolver *hittest.Resolver
	Input    *interact.Controller
	View     *view.Machine

	hover    world.Ref
	hovering bool
	frames   uint64
	tunables chan config.Config
}

// New builds the world from cfg and wires camera, input, hit testing and the view machine.
func New(cfg config.Config, log *logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.Nop()
	}
	w, err := world.Build(cfg.WorldOptions())
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	vp := camera.Viewport{Width: cfg.Window.Width, Height: cfg.Window.Height}
	cam := camera.New(cfg.CameraPose(), cfg.Camera.FOV, vp.Aspect())
	cam.Near, cam.Far = cfg.Camera.Near, cfg.Camera.Far
	cam.SetDistanceLimits(cfg.Camera.MinDistance, cfg.Camera.MaxDistance)
	lim := cfg.Camera.PanLimit
	cam.PanBounds = camera.Bounds{MinX: -lim, MaxX: lim, MinY: -lim, MaxY: lim}

	s := &Session{
		cfg:      cfg,
		log:      log.Named("session"),
		World:    w,
		Camera:   cam,
		Viewport: vp,
		Timeline: anim.NewTimeline(),
		Bus:      events.NewBus(),
		Resolver: hittest.New(w),
		tunables: make(chan config.Config, 1),
	}
	s.Resolver.Margin = cfg.HitTest.FrontFacingMargin
	s.View = view.New(cfg.ViewConfig(), w, cam, s.Timeline, s.Bus, log.Named("view"))
	s.Input = interact.New(cfg.InteractConfig(), w, cam, vp, s.View, log.Named("interact"))
	s.Input.OnTap = s.tap
	s.Input.OnGrab = s.View.CancelFace
	s.View.SetInertia(s.Input)

	s.Bus.OnSelection(func(e events.Selection) {
		s.log.Info("selection", zap.Int("body", e.Body), zap.Int("panel", e.Panel), zap.Bool("entering", e.Entering))
	})

	meshes := 0
	for i := 0; i < w.Graph.Len(); i++ {
		if n := w.Graph.Node(scenegraph.NodeID(i)); n != nil && n.Mesh != nil {
			meshes++
		}
	}
	s.log.Info("session ready",
		zap.Int("bodies", len(w.Bodies)),
		zap.Int("panels", w.PanelCount()),
		zap.Int("meshes", meshes),
		zap.Int("nodes", w.Graph.Len()))
	return s, nil
}

// Config returns the configuration the session was built from, with applied tunables.
func (s *Session) Config() config.Config { return s.cfg }

// Frames returns the number of ticks run so far.
func (s *Session) Frames() uint64 { return s.frames }

// Resize updates the viewport and the camera's aspect ratio. Non-positive sizes are ignored.
func (s *Session) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.Viewport = camera.Viewport{Width: width, Height: height}
	s.Camera.Resize(s.Viewport)
	s.Input.SetViewport(s.Viewport)
	s.log.Debug("resize", zap.Int("width", width), zap.Int("height", height))
}

// PointerDown forwards a press to the interaction controller.
func (s *Session) PointerDown(x, y float64) {
	s.Input.PointerDown(x, y)
}

// PointerMove continues a gesture, or updates hover when no button is held.
func (s *Session) PointerMove(x, y float64) {
	if s.Input.Gesture().Active {
		s.Input.PointerMove(x, y)
		return
	}
	s.Hover(x, y)
}

// PointerUp ends a gesture; a tap resolves a panel and drives the view machine.
func (s *Session) PointerUp() {
	s.Input.PointerUp()
}

// PointerLeave ends a gesture without a tap and clears hover.
func (s *Session) PointerLeave() {
	s.Input.PointerLeave()
	s.setHover(world.Ref{}, false)
}

// Wheel zooms.
func (s *Session) Wheel(steps float64) {
	s.Input.Wheel(steps)
}

// TouchStart, TouchMove and TouchEnd forward touch points; two fingers pinch-zoom.
func (s *Session) TouchStart(id int, x, y float64) { s.Input.TouchStart(id, x, y) }
func (s *Session) TouchMove(id int, x, y float64)  { s.Input.TouchMove(id, x, y) }
func (s *Session) TouchEnd(id int)                 { s.Input.TouchEnd(id) }

// Escape leaves Detail.
func (s *Session) Escape() bool {
	return s.View.Escape()
}

// Select selects a panel as if it had been tapped.
func (s *Session) Select(ref world.Ref) bool {
	return s.View.Select(ref)
}

// Tune changes damping and rotate sensitivity; zero keeps the current value.
func (s *Session) Tune(damping, sensitivity float64) {
	s.Input.Tune(damping, sensitivity)
	c := s.Input.Config()
	s.cfg.Interaction.Damping, s.cfg.Interaction.RotateSensitivity = c.Damping, c.RotateSensitivity
	s.log.Info("tune", zap.Float64("damping", c.Damping), zap.Float64("sensitivity", c.RotateSensitivity))
}

// State names the view state.
func (s *Session) State() string { return s.View.State().String() }

func (s *Session) tap(x, y float64) {
	res, ok := s.Resolver.ResolvePixel(s.Camera, s.Viewport, x, y, s.View.Candidate)
	var ref world.Ref
	if ok {
		ref = res.Panel.Ref()
	}
	s.log.Debug("tap", zap.Float64("x", x), zap.Float64("y", y), zap.Bool("hit", ok),
		zap.Int("body", ref.Body), zap.Int("panel", ref.Panel))
	s.View.Tap(ref, ok)
}

// Hover resolves the panel under pixel (x, y) and marks it hovered. Changes are published on
// the bus. Hover is cleared while a transition runs.
func (s *Session) Hover(x, y float64) {
	st := s.View.State()
	if st == view.TransitioningToDetail || st == view.TransitioningToOverview {
		s.setHover(world.Ref{}, false)
		return
	}
	res, ok := s.Resolver.ResolvePixel(s.Camera, s.Viewport, x, y, s.View.Candidate)
	if !ok {
		s.setHover(world.Ref{}, false)
		return
	}
	s.setHover(res.Panel.Ref(), true)
}

// Hovered returns the hovered panel, if any.
func (s *Session) Hovered() (world.Ref, bool) { return s.hover, s.hovering }

func (s *Session) setHover(ref world.Ref, on bool) {
	if on == s.hovering && (!on || ref == s.hover) {
		return
	}
	if s.hovering {
		if p := s.World.Panel(s.hover); p != nil {
			p.Hovered = false
		}
		s.Bus.PublishHover(events.Hover{Body: s.hover.Body, Panel: s.hover.Panel, Entering: false})
	}
	s.hover, s.hovering = ref, on
	if on {
		if p := s.World.Panel(ref); p != nil {
			p.Hovered = true
		}
		s.Bus.PublishHover(events.Hover{Body: ref.Body, Panel: ref.Panel, Entering: true})
	}
}

// FrameTick advances the session by dt seconds: inertia, then decorative motion and idle spin,
// then animations, then view transitions.
func (s *Session) FrameTick(dt float64) {
	select {
	case cfg := <-s.tunables:
		s.ApplyTunables(cfg)
	default:
	}
	s.frames++
	s.Input.FrameTick()
	s.World.Tick(dt, s.spinning)
	s.Timeline.Advance(dt)
	s.View.Tick()
}

// spinning reports whether body gets idle spin this tick: the view allows it and the user is
// not holding it.
func (s *Session) spinning(body int) bool {
	return s.View.Spinning(body) && !s.Input.Held(body)
}

// QueueTunables hands a reloaded config to the loop; it is applied at the start of the next
// tick. Safe to call from any goroutine. Only the latest queued config is kept.
func (s *Session) QueueTunables(cfg config.Config) {
	for {
		select {
		case s.tunables <- cfg:
			return
		default:
		}
		select {
		case <-s.tunables:
		default:
		}
	}
}

// ApplyTunables applies the settings that may change while running: sensitivity, damping,
// idle spin and the front-facing margin.
func (s *Session) ApplyTunables(cfg config.Config) {
	s.Input.Tune(cfg.Interaction.Damping, cfg.Interaction.RotateSensitivity)
	s.World.IdleSpin = cfg.Interaction.IdleSpin
	s.Resolver.Margin = cfg.HitTest.FrontFacingMargin
	s.cfg.Interaction = cfg.Interaction
	s.cfg.HitTest = cfg.HitTest
	s.log.Info("tunables applied",
		zap.Float64("damping", cfg.Interaction.Damping),
		zap.Float64("sensitivity", cfg.Interaction.RotateSensitivity),
		zap.Float64("idle_spin", cfg.Interaction.IdleSpin),
		zap.Float64("margin", cfg.HitTest.FrontFacingMargin))
}
