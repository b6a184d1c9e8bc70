package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestStep_InertiaLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v0 := rapid.Float64Range(0.01, 2).Draw(t, "v0")
		d := rapid.Float64Range(0.5, 0.98).Draw(t, "damping")
		n := rapid.IntRange(1, 400).Draw(t, "ticks")

		w := NewWorld()
		w.Damping = d
		b := NewBody("b", nil)
		b.Velocity = [2]float64{v0, 0}
		w.AddBody(b)

		want := v0
		for i := 0; i < n; i++ {
			w.Step()
			want *= d
			if want < w.Epsilon {
				want = 0
			}
			require.InDelta(t, want, b.Velocity[0], 1e-12, "tick %d", i+1)
			require.GreaterOrEqual(t, b.Velocity[0], 0.0)
		}
	})
}

func TestStep_AppliesBeforeDamping(t *testing.T) {
	var moved float64
	b := NewBody("spin", func(dx, _ float64) { moved += dx })
	w := NewWorld()
	w.AddBody(b)

	b.Push(0.6, 0)
	assert.Equal(t, 0.6, moved)
	moved = 0

	for i := 0; i < 50; i++ {
		w.Step()
	}
	want := 0.6 * (1 - math.Pow(0.92, 50)) / (1 - 0.92)
	assert.InDelta(t, want, moved, 1e-12)
	assert.True(t, w.Moving())

	for i := 0; i < 200; i++ {
		w.Step()
	}
	assert.Equal(t, [2]float64{}, b.Velocity)
	assert.False(t, w.Moving())
}

func TestStep_HeldBodiesKeepVelocity(t *testing.T) {
	calls := 0
	b := NewBody("held", func(_, _ float64) { calls++ })
	b.Velocity = [2]float64{1, 1}
	b.Held = true
	w := NewWorld()
	w.AddBody(b)

	w.Step()
	assert.Equal(t, 0, calls)
	assert.Equal(t, [2]float64{1, 1}, b.Velocity)
}

func TestPush_LatestWins(t *testing.T) {
	b := NewBody("b", nil)
	b.Push(3, 4)
	assert.Equal(t, 5.0, b.Speed())
	b.Push(-1, 0)
	assert.Equal(t, [2]float64{-1, 0}, b.Velocity)
	b.Stop()
	assert.Zero(t, b.Speed())
}
