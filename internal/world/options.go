package world

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoBodies is returned when a world is built without any body.
var ErrNoBodies = errors.New("no bodies")

// Emphasis levels for panel highlighting.
const (
	RestEmphasis     = 0.2
	SelectedEmphasis = 0.5
	DimmedEmphasis   = 0.1
)

// Motion is the decorative movement of a body: a vertical float and a breathing scale, both
// sinusoidal in session time. Amplitudes of zero disable them.
type Motion struct {
	FloatAmplitude   float64 `yaml:"float_amplitude" mapstructure:"float_amplitude"`
	FloatSpeed       float64 `yaml:"float_speed" mapstructure:"float_speed"` // radians per second
	BreatheAmplitude float64 `yaml:"breathe_amplitude" mapstructure:"breathe_amplitude"`
	BreatheSpeed     float64 `yaml:"breathe_speed" mapstructure:"breathe_speed"`
	Phase            float64 `yaml:"phase" mapstructure:"phase"`
}

// BodySpec describes one body to build.
// Rows lists the panels per polar band; when empty, PanelCount panels go into a single row.
// The *Scale fields are radii relative to Radius for the auxiliary layers.
type BodySpec struct {
	Position   r3.Vec
	Radius     float64
	PanelCount int
	Rows       []int
	Gap        float64
	Bands      []float64

	WidthSegments  int
	HeightSegments int

	BackScale   float64
	Filler      bool
	FillerScale float64
	Label       bool
	LabelScale  float64
	LabelInset  float64
	Edges       bool
	EdgeScale   float64
	EdgeWidth   float64

	Opacity float64
	Motion  Motion
}

// DefaultBody returns a body of seven panels in a 2-3-2 layout at the origin.
func DefaultBody() BodySpec {
	return BodySpec{
		Radius:         10,
		PanelCount:     7,
		Rows:           []int{2, 3, 2},
		Gap:            0.02,
		WidthSegments:  16,
		HeightSegments: 12,
		BackScale:      0.98,
		Filler:         true,
		FillerScale:    0.96,
		Label:          true,
		LabelScale:     1.005,
		LabelInset:     0.2,
		Edges:          true,
		EdgeScale:      1.002,
		EdgeWidth:      0.01,
		Opacity:        1,
		Motion: Motion{
			FloatAmplitude:   0.3,
			FloatSpeed:       0.8,
			BreatheAmplitude: 0.01,
			BreatheSpeed:     0.6,
		},
	}
}

// Options configures Build.
type Options struct {
	Bodies          []BodySpec
	IdleSpin        float64
	BackdropSamples int
	BackdropRadius  float64
	BackdropSpin    float64
}

// DefaultOptions returns a single default body with the backdrop and idle spin on.
func DefaultOptions() Options {
	return Options{
		Bodies:          []BodySpec{DefaultBody()},
		IdleSpin:        0.001,
		BackdropSamples: 2000,
		BackdropRadius:  50,
		BackdropSpin:    0.0001,
	}
}
