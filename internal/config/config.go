package config

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/camera"
	"sphere-panels/internal/hittest"
	"sphere-panels/internal/interact"
	"sphere-panels/internal/logger"
	"sphere-panels/internal/view"
	"sphere-panels/internal/world"
)

// ConfigPath is the config file, relative to the process working directory.
const ConfigPath = "config/panels.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Vec3 is a YAML-friendly 3-vector.
type Vec3 [3]float64

// R3 converts v to a gonum vector.
func (v Vec3) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// Config is the whole persisted configuration.
type Config struct {
	Window      Window      `yaml:"window" mapstructure:"window"`
	Camera      Camera      `yaml:"camera" mapstructure:"camera"`
	Interaction Interaction `yaml:"interaction" mapstructure:"interaction"`
	HitTest     HitTest     `yaml:"hittest" mapstructure:"hittest"`
	View        View        `yaml:"view" mapstructure:"view"`
	Bodies      []Body      `yaml:"bodies" mapstructure:"bodies"`
	Backdrop    Backdrop    `yaml:"backdrop" mapstructure:"backdrop"`
	Log         Log         `yaml:"log" mapstructure:"log"`
	Debug       Debug       `yaml:"debug" mapstructure:"debug"`
}

type Window struct {
	Width  int    `yaml:"width" mapstructure:"width"`
	Height int    `yaml:"height" mapstructure:"height"`
	Title  string `yaml:"title" mapstructure:"title"`
	FPS    int    `yaml:"fps" mapstructure:"fps"`
}

type Camera struct {
	Position    Vec3    `yaml:"position" mapstructure:"position"`
	Target      Vec3    `yaml:"target" mapstructure:"target"`
	FOV         float64 `yaml:"fov" mapstructure:"fov"`
	Near        float64 `yaml:"near" mapstructure:"near"`
	Far         float64 `yaml:"far" mapstructure:"far"`
	MinDistance float64 `yaml:"min_distance" mapstructure:"min_distance"`
	MaxDistance float64 `yaml:"max_distance" mapstructure:"max_distance"`
	PanLimit    float64 `yaml:"pan_limit" mapstructure:"pan_limit"`
}

type Interaction struct {
	DragThreshold     float64 `yaml:"drag_threshold" mapstructure:"drag_threshold"`
	RotateSensitivity float64 `yaml:"rotate_sensitivity" mapstructure:"rotate_sensitivity"`
	PanSensitivity    float64 `yaml:"pan_sensitivity" mapstructure:"pan_sensitivity"`
	Damping           float64 `yaml:"damping" mapstructure:"damping"`
	Epsilon           float64 `yaml:"epsilon" mapstructure:"epsilon"`
	IdleSpin          float64 `yaml:"idle_spin" mapstructure:"idle_spin"`
	WheelZoom         float64 `yaml:"wheel_zoom" mapstructure:"wheel_zoom"`
}

type HitTest struct {
	FrontFacingMargin float64 `yaml:"front_facing_margin" mapstructure:"front_facing_margin"`
}

type View struct {
	TransitionDuration float64 `yaml:"transition_duration" mapstructure:"transition_duration"`
	DetailDistance     float64 `yaml:"detail_distance" mapstructure:"detail_distance"`
	FadedOpacity       float64 `yaml:"faded_opacity" mapstructure:"faded_opacity"`
	ShrinkScale        float64 `yaml:"shrink_scale" mapstructure:"shrink_scale"`
	HighlightDuration  float64 `yaml:"highlight_duration" mapstructure:"highlight_duration"`
	SelectedScale      float64 `yaml:"selected_scale" mapstructure:"selected_scale"`
	FaceSelected       bool    `yaml:"face_selected" mapstructure:"face_selected"`
	FaceDuration       float64 `yaml:"face_duration" mapstructure:"face_duration"`
	LiftLabel          bool    `yaml:"lift_label" mapstructure:"lift_label"`
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 { return &v }

// Body is one body's layout. Segments is width then height.
type Body struct {
	Position Vec3    `yaml:"position" mapstructure:"position"`
	Radius   float64 `yaml:"radius" mapstructure:"radius"`
	Rows     []int   `yaml:"rows" mapstructure:"rows"`
	Gap      float64 `yaml:"gap" mapstructure:"gap"`
	Segments [2]int  `yaml:"segments" mapstructure:"segments"`
	Filler   bool    `yaml:"filler" mapstructure:"filler"`
	Label    bool    `yaml:"label" mapstructure:"label"`
	Edges    bool    `yaml:"edges" mapstructure:"edges"`
	// Opacity is the resting opacity; unset means fully opaque.
	Opacity *float64 `yaml:"opacity,omitempty" mapstructure:"opacity"`

	Motion world.Motion `yaml:"motion" mapstructure:"motion"`
}

type Backdrop struct {
	Samples int     `yaml:"samples" mapstructure:"samples"`
	Radius  float64 `yaml:"radius" mapstructure:"radius"`
	Spin    float64 `yaml:"spin" mapstructure:"spin"`
}

type Log struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file" mapstructure:"file"`
}

type Debug struct {
	ShowFPS   bool `yaml:"show_fps" mapstructure:"show_fps"`
	ShowState bool `yaml:"show_state" mapstructure:"show_state"`
}

// Default returns the reference configuration: one seven-panel body seen from (0, 0, 25).
func Default() Config {
	body := world.DefaultBody()
	ic := interact.DefaultConfig()
	vc := view.DefaultConfig()
	wo := world.DefaultOptions()
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Sphere Panels", FPS: 60},
		Camera: Camera{
			Position:    Vec3{0, 0, 25},
			FOV:         75,
			Near:        0.1,
			Far:         1000,
			MinDistance: 12.5,
			MaxDistance: 50,
			PanLimit:    10,
		},
		Interaction: Interaction{
			DragThreshold:     ic.DragThreshold,
			RotateSensitivity: ic.RotateSensitivity,
			PanSensitivity:    ic.PanSensitivity,
			Damping:           ic.Damping,
			Epsilon:           ic.Epsilon,
			IdleSpin:          wo.IdleSpin,
			WheelZoom:         ic.WheelZoom,
		},
		HitTest: HitTest{FrontFacingMargin: hittest.DefaultFrontFacingMargin},
		View: View{
			TransitionDuration: vc.TransitionDuration,
			DetailDistance:     vc.DetailDistance,
			FadedOpacity:       vc.FadedOpacity,
			ShrinkScale:        vc.ShrinkScale,
			HighlightDuration:  vc.HighlightDuration,
			SelectedScale:      vc.SelectedScale,
			FaceSelected:       vc.FaceCamera,
			FaceDuration:       vc.FaceDuration,
			LiftLabel:          vc.LiftLabel,
		},
		Bodies: []Body{{
			Radius:   body.Radius,
			Rows:     body.Rows,
			Gap:      body.Gap,
			Segments: [2]int{body.WidthSegments, body.HeightSegments},
			Filler:   body.Filler,
			Label:    body.Label,
			Edges:    body.Edges,
			Opacity:  Float(body.Opacity),
			Motion:   body.Motion,
		}},
		Backdrop: Backdrop{Samples: wo.BackdropSamples, Radius: wo.BackdropRadius, Spin: wo.BackdropSpin},
		Log:      Log{Level: "info", Format: "json", File: logger.LogFilePath},
	}
}

// Validate checks ranges the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("%w: camera fov %g", ErrInvalid, c.Camera.FOV)
	}
	if c.Camera.Position == c.Camera.Target {
		return fmt.Errorf("%w: camera position equals target", ErrInvalid)
	}
	if c.Camera.MinDistance <= 0 || c.Camera.MaxDistance < c.Camera.MinDistance {
		return fmt.Errorf("%w: camera distance range [%g, %g]", ErrInvalid, c.Camera.MinDistance, c.Camera.MaxDistance)
	}
	in := c.Interaction
	if in.Damping <= 0 || in.Damping >= 1 {
		return fmt.Errorf("%w: damping %g not in (0, 1)", ErrInvalid, in.Damping)
	}
	if in.Epsilon <= 0 {
		return fmt.Errorf("%w: epsilon %g", ErrInvalid, in.Epsilon)
	}
	if in.DragThreshold < 0 || in.RotateSensitivity <= 0 {
		return fmt.Errorf("%w: drag threshold %g, sensitivity %g", ErrInvalid, in.DragThreshold, in.RotateSensitivity)
	}
	if m := c.HitTest.FrontFacingMargin; m < 0 || m >= 1 {
		return fmt.Errorf("%w: front facing margin %g not in [0, 1)", ErrInvalid, m)
	}
	if c.View.TransitionDuration < 0 || c.View.FaceDuration < 0 || c.View.HighlightDuration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, world.ErrNoBodies)
	}
	for i, b := range c.Bodies {
		if b.Radius <= 0 {
			return fmt.Errorf("%w: body %d radius %g", ErrInvalid, i, b.Radius)
		}
		if b.Opacity != nil && (*b.Opacity < 0 || *b.Opacity > 1) {
			return fmt.Errorf("%w: body %d opacity %g", ErrInvalid, i, *b.Opacity)
		}
	}
	return nil
}

// WorldOptions converts the body and backdrop sections into world build options. Fields the
// file does not carry keep world.DefaultBody's values.
func (c *Config) WorldOptions() world.Options {
	opts := world.Options{
		IdleSpin:        c.Interaction.IdleSpin,
		BackdropSamples: c.Backdrop.Samples,
		BackdropRadius:  c.Backdrop.Radius,
		BackdropSpin:    c.Backdrop.Spin,
	}
	for _, b := range c.Bodies {
		spec := world.DefaultBody()
		spec.Position = b.Position.R3()
		spec.Radius = b.Radius
		spec.Rows = append([]int(nil), b.Rows...)
		spec.PanelCount = 0
		spec.Gap = b.Gap
		if b.Segments[0] > 0 {
			spec.WidthSegments = b.Segments[0]
		}
		if b.Segments[1] > 0 {
			spec.HeightSegments = b.Segments[1]
		}
		spec.Filler = b.Filler
		spec.Label = b.Label
		spec.Edges = b.Edges
		if b.Opacity != nil {
			spec.Opacity = *b.Opacity
		}
		spec.Motion = b.Motion
		opts.Bodies = append(opts.Bodies, spec)
	}
	return opts
}

// CameraPose is the camera's base pose.
func (c *Config) CameraPose() camera.Pose {
	return camera.Pose{Position: c.Camera.Position.R3(), Target: c.Camera.Target.R3()}
}

// InteractConfig returns the controller tuning.
func (c *Config) InteractConfig() interact.Config {
	in := c.Interaction
	return interact.Config{
		DragThreshold:     in.DragThreshold,
		RotateSensitivity: in.RotateSensitivity,
		PanSensitivity:    in.PanSensitivity,
		Damping:           in.Damping,
		Epsilon:           in.Epsilon,
		WheelZoom:         in.WheelZoom,
	}
}

// ViewConfig returns the transition settings.
func (c *Config) ViewConfig() view.Config {
	v := c.View
	return view.Config{
		TransitionDuration: v.TransitionDuration,
		DetailDistance:     v.DetailDistance,
		FadedOpacity:       v.FadedOpacity,
		ShrinkScale:        v.ShrinkScale,
		HighlightDuration:  v.HighlightDuration,
		SelectedScale:      v.SelectedScale,
		FaceCamera:         v.FaceSelected,
		FaceDuration:       v.FaceDuration,
		LiftLabel:          v.LiftLabel,
	}
}

// LoggerOptions returns the log section as logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File}
}
