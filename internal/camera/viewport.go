package camera

// Viewport is the pixel size of the drawing surface.
type Viewport struct {
	Width  int
	Height int
}

// Aspect returns width over height, or 1 for an empty viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// NDC converts a pixel position (origin top-left, y down) to normalized device coordinates.
func (v Viewport) NDC(px, py float64) (x, y float64) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	x = px/float64(v.Width)*2 - 1
	y = -(py/float64(v.Height))*2 + 1
	return x, y
}

// Center returns the pixel at the middle of the viewport.
func (v Viewport) Center() (px, py float64) {
	return float64(v.Width) / 2, float64(v.Height) / 2
}

// Resize updates the viewport and the camera aspect together.
func (c *Camera) Resize(v Viewport) {
	c.Aspect = v.Aspect()
}

// PixelRay returns the ray through pixel (px, py) of v.
func (c *Camera) PixelRay(v Viewport, px, py float64) Ray {
	x, y := v.NDC(px, py)
	return c.Ray(x, y)
}
