package interact

import "math"

type touchPoint struct {
	id   int
	x, y float64
}

type touchState struct {
	points     []touchPoint
	pinching   bool
	suppressed bool // set once a second finger lands, cleared when all fingers lift
	prevDist   float64
}

func (s *touchState) find(id int) int {
	for i, p := range s.points {
		if p.id == id {
			return i
		}
	}
	return -1
}

func (s *touchState) spread() float64 {
	a, b := s.points[0], s.points[1]
	return math.Hypot(b.x-a.x, b.y-a.y)
}

// TouchStart registers finger id at (x, y). One finger behaves like a pointer; a second finger
// ends that gesture and starts a pinch.
func (c *Controller) TouchStart(id int, x, y float64) {
	s := &c.touch
	if s.find(id) >= 0 {
		return
	}
	s.points = append(s.points, touchPoint{id: id, x: x, y: y})
	switch len(s.points) {
	case 1:
		if !s.suppressed {
			c.PointerDown(x, y)
		}
	case 2:
		c.PointerLeave()
		s.suppressed = true
		s.pinching = true
		s.prevDist = s.spread()
	}
}

// TouchMove updates finger id. During a pinch the change in finger spread zooms the camera.
func (c *Controller) TouchMove(id int, x, y float64) {
	s := &c.touch
	i := s.find(id)
	if i < 0 {
		return
	}
	s.points[i].x, s.points[i].y = x, y
	if s.pinching && len(s.points) >= 2 {
		d := s.spread()
		if s.prevDist > 0 && d > 0 && c.gate.CanPan() {
			c.cam.Zoom(s.prevDist / d)
		}
		s.prevDist = d
		return
	}
	if !s.suppressed && len(s.points) == 1 {
		c.PointerMove(x, y)
	}
}

// TouchEnd lifts finger id.
func (c *Controller) TouchEnd(id int) {
	s := &c.touch
	i := s.find(id)
	if i < 0 {
		return
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	if len(s.points) < 2 {
		s.pinching = false
	}
	if len(s.points) > 0 {
		return
	}
	if s.suppressed {
		s.suppressed = false
		return
	}
	c.PointerUp()
}

// Pinching reports whether a two-finger zoom is in progress.
func (c *Controller) Pinching() bool { return c.touch.pinching }
