package input

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Sink receives pointer, touch and key events in window pixels.
type Sink interface {
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp()
	PointerLeave()
	Wheel(steps float64)
	TouchStart(id int, x, y float64)
	TouchMove(id int, x, y float64)
	TouchEnd(id int)
	Escape() bool
}

// Host polls raylib once per frame and turns state changes into Sink events. With Touch set
// it reads touch points instead of the mouse.
type Host struct {
	Touch bool

	sink     Sink
	down     bool
	onScreen bool
	lastX    float32
	lastY    float32
	touches  map[int32]rl.Vector2
}

// New returns a host feeding sink.
func New(sink Sink) *Host {
	return &Host{sink: sink, onScreen: true, touches: make(map[int32]rl.Vector2)}
}

// Poll reads this frame's input. When blocked (e.g. the terminal owns the keyboard and
// pointer) any gesture in progress is ended and nothing else is forwarded.
func (h *Host) Poll(blocked bool) {
	if blocked {
		h.release()
		return
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		h.sink.Escape()
	}
	if h.Touch {
		h.pollTouch()
		return
	}
	h.pollMouse()
}

func (h *Host) pollMouse() {
	on := rl.IsCursorOnScreen()
	if !on {
		if h.onScreen {
			h.onScreen = false
			h.down = false
			h.sink.PointerLeave()
		}
		return
	}
	h.onScreen = true

	pos := rl.GetMousePosition()
	x, y := float64(pos.X), float64(pos.Y)
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		h.down = true
		h.sink.PointerDown(x, y)
	} else if pos.X != h.lastX || pos.Y != h.lastY {
		h.sink.PointerMove(x, y)
	}
	h.lastX, h.lastY = pos.X, pos.Y

	if h.down && rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		h.down = false
		h.sink.PointerUp()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		h.sink.Wheel(float64(wheel))
	}
}

func (h *Host) pollTouch() {
	n := int(rl.GetTouchPointCount())
	seen := make(map[int32]bool, n)
	for i := 0; i < n; i++ {
		id := rl.GetTouchPointId(int32(i))
		pos := rl.GetTouchPosition(int32(i))
		seen[id] = true
		prev, ok := h.touches[id]
		h.touches[id] = pos
		switch {
		case !ok:
			h.sink.TouchStart(int(id), float64(pos.X), float64(pos.Y))
		case prev != pos:
			h.sink.TouchMove(int(id), float64(pos.X), float64(pos.Y))
		}
	}
	for id := range h.touches {
		if !seen[id] {
			delete(h.touches, id)
			h.sink.TouchEnd(int(id))
		}
	}
}

func (h *Host) release() {
	if h.down {
		h.down = false
		h.sink.PointerLeave()
	}
	for id := range h.touches {
		delete(h.touches, id)
		h.sink.TouchEnd(int(id))
	}
}
