package anim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Tween is one in-flight transition. Step receives the eased progress each tick; the tween is
// dropped once it has delivered progress 1.
type Tween struct {
	Key      string
	Group    string
	Duration float64 // seconds
	Elapsed  float64
	Ease     Ease
	Step     func(eased float64)
}

// Progress returns the linear progress in [0, 1].
func (tw *Tween) Progress() float64 {
	if tw.Duration <= 0 {
		return 1
	}
	return math.Min(1, tw.Elapsed/tw.Duration)
}

// Timeline is the list of active tweens, advanced once per frame. Starting a tween under a key
// that is already running replaces it, which is how a new transition cancels an old one.
type Timeline struct {
	tweens []*Tween
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Start adds a tween. A zero or negative duration applies the end state immediately.
func (tl *Timeline) Start(key, group string, duration float64, ease Ease, step func(eased float64)) {
	if ease == nil {
		ease = Linear
	}
	tw := &Tween{Key: key, Group: group, Duration: duration, Ease: ease, Step: step}
	if duration <= 0 {
		tl.Cancel(key)
		step(1)
		return
	}
	for i, old := range tl.tweens {
		if old.Key == key {
			tl.tweens[i] = tw
			return
		}
	}
	tl.tweens = append(tl.tweens, tw)
}

// Advance moves every tween forward by dt seconds, in start order.
func (tl *Timeline) Advance(dt float64) {
	if len(tl.tweens) == 0 {
		return
	}
	active := tl.tweens[:0]
	for _, tw := range tl.tweens {
		tw.Elapsed += dt
		p := tw.Progress()
		if p >= 1 {
			tw.Step(1)
			continue
		}
		tw.Step(tw.Ease(p))
		active = append(active, tw)
	}
	for i := len(active); i < len(tl.tweens); i++ {
		tl.tweens[i] = nil
	}
	tl.tweens = active
}

// Cancel drops the tween with key, leaving its target wherever it is. It reports whether one was running.
func (tl *Timeline) Cancel(key string) bool {
	for i, tw := range tl.tweens {
		if tw.Key == key {
			tl.tweens = append(tl.tweens[:i], tl.tweens[i+1:]...)
			return true
		}
	}
	return false
}

// CancelGroup drops every tween in group.
func (tl *Timeline) CancelGroup(group string) {
	active := tl.tweens[:0]
	for _, tw := range tl.tweens {
		if tw.Group != group {
			active = append(active, tw)
		}
	}
	tl.tweens = active
}

// Finish jumps every tween in group to its end state and drops it.
func (tl *Timeline) Finish(group string) {
	active := tl.tweens[:0]
	for _, tw := range tl.tweens {
		if tw.Group == group {
			tw.Step(1)
			continue
		}
		active = append(active, tw)
	}
	tl.tweens = active
}

// Busy reports whether any tween in group is still running.
func (tl *Timeline) Busy(group string) bool {
	for _, tw := range tl.tweens {
		if tw.Group == group {
			return true
		}
	}
	return false
}

// Running reports whether key is still running.
func (tl *Timeline) Running(key string) bool {
	for _, tw := range tl.tweens {
		if tw.Key == key {
			return true
		}
	}
	return false
}

// Len returns the number of active tweens.
func (tl *Timeline) Len() int { return len(tl.tweens) }

// Value returns a step function that interpolates a scalar from from to to.
func Value(from, to float64, set func(float64)) func(float64) {
	return func(e float64) {
		if e >= 1 {
			set(to)
			return
		}
		set(from + (to-from)*e)
	}
}

// Vec returns a step function that interpolates a vector from from to to.
func Vec(from, to r3.Vec, set func(r3.Vec)) func(float64) {
	return func(e float64) {
		if e >= 1 {
			set(to)
			return
		}
		set(r3.Add(from, r3.Scale(e, r3.Sub(to, from))))
	}
}
