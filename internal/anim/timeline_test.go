package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func TestEase_Endpoints(t *testing.T) {
	for name, e := range map[string]Ease{
		"linear": Linear, "power2.out": Power2Out, "power2.in": Power2In,
		"power2.inOut": Power2InOut, "sine.inOut": SineInOut,
	} {
		assert.InDelta(t, 0, e(0), 1e-15, name)
		assert.InDelta(t, 1, e(1), 1e-15, name)
	}
	assert.InDelta(t, 0.5, Power2InOut(0.5), 1e-15)
	assert.InDelta(t, 0.875, Power2Out(0.5), 1e-15)
}

func TestEase_Monotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 1).Draw(t, "a")
		b := rapid.Float64Range(a, 1).Draw(t, "b")
		for _, e := range []Ease{Linear, Power2Out, Power2In, Power2InOut, SineInOut} {
			require.LessOrEqual(t, e(a), e(b)+1e-15)
		}
	})
}

func TestTimeline_RunsToExactEnd(t *testing.T) {
	tl := NewTimeline()
	var v float64
	tl.Start("fade", "view", 0.5, Power2Out, Value(1, 0.25, func(x float64) { v = x }))
	assert.True(t, tl.Busy("view"))

	tl.Advance(0.25)
	assert.InDelta(t, 1-0.75*0.875, v, 1e-12)
	assert.True(t, tl.Running("fade"))

	tl.Advance(0.3)
	assert.Equal(t, 0.25, v)
	assert.False(t, tl.Busy("view"))
	assert.Zero(t, tl.Len())
}

func TestTimeline_RestartReplaces(t *testing.T) {
	tl := NewTimeline()
	var got []float64
	tl.Start("k", "g", 1, Linear, Value(0, 10, func(x float64) { got = append(got, x) }))
	tl.Advance(0.5)
	tl.Start("k", "g", 1, Linear, Value(100, 200, func(x float64) { got = append(got, x) }))
	tl.Advance(0.5)
	assert.Equal(t, []float64{5, 150}, got)
	assert.Equal(t, 1, tl.Len())
}

func TestTimeline_CancelAndFinish(t *testing.T) {
	tl := NewTimeline()
	var a, b r3.Vec
	tl.Start("a", "cam", 1, Linear, Vec(r3.Vec{}, r3.Vec{X: 2}, func(v r3.Vec) { a = v }))
	tl.Start("b", "body", 1, Linear, Vec(r3.Vec{}, r3.Vec{Y: 4}, func(v r3.Vec) { b = v }))
	tl.Advance(0.5)
	assert.Equal(t, r3.Vec{X: 1}, a)

	assert.True(t, tl.Cancel("a"))
	assert.False(t, tl.Cancel("a"))
	tl.Advance(0.1)
	assert.Equal(t, r3.Vec{X: 1}, a)

	tl.Finish("body")
	assert.Equal(t, r3.Vec{Y: 4}, b)
	assert.Zero(t, tl.Len())
}

func TestTimeline_ZeroDurationIsImmediate(t *testing.T) {
	tl := NewTimeline()
	v := 0.0
	tl.Start("now", "g", 0, nil, Value(0, 3, func(x float64) { v = x }))
	assert.Equal(t, 3.0, v)
	assert.False(t, tl.Busy("g"))
}

func TestTimeline_CancelGroup(t *testing.T) {
	tl := NewTimeline()
	noop := func(float64) {}
	tl.Start("a", "x", 1, Linear, noop)
	tl.Start("b", "y", 1, Linear, noop)
	tl.Start("c", "x", 1, Linear, noop)
	tl.CancelGroup("x")
	assert.Equal(t, 1, tl.Len())
	assert.True(t, tl.Running("b"))
}

func TestByName(t *testing.T) {
	assert.InDelta(t, Power2InOut(0.3), ByName("power2.inOut")(0.3), 0)
	assert.InDelta(t, 0.3, ByName("nope")(0.3), 0)
}
