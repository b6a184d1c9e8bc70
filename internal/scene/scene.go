package scene

import (
	"image/color"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/image/colornames"
	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/session"
	"sphere-panels/internal/world"
)

const (
	ambient    = 0.35
	emphasisK  = 1.2 // brightness gained per unit of emphasis above rest
	hoverBoost = 0.15
	starSize   = 0.08
)

// Palette colors meshes by role.
type Palette struct {
	Front  color.RGBA
	Back   color.RGBA
	Label  color.RGBA
	Edge   color.RGBA
	Filler color.RGBA
	Star   color.RGBA
}

// DefaultPalette is a dark blue body with light labels and gold edges.
func DefaultPalette() Palette {
	return Palette{
		Front:  colornames.Steelblue,
		Back:   colornames.Midnightblue,
		Label:  colornames.Whitesmoke,
		Edge:   colornames.Gold,
		Filler: colornames.Darkslategray,
		Star:   colornames.Lightsteelblue,
	}
}

// Scene draws session frames with raylib. Meshes are drawn triangle by triangle in world
// space with flat directional shading; translucent items are drawn after opaque ones.
type Scene struct {
	Camera   rl.Camera3D
	Palette  Palette
	lightDir [3]float32

	opaque, translucent []*session.Item
}

// New returns a scene with the default palette and a light from the upper right front.
func New() *Scene {
	s := &Scene{Palette: DefaultPalette()}
	s.Camera.Projection = rl.CameraPerspective
	s.SetLight(0.5, 1, 0.8)
	return s
}

// SetLight sets the direction toward the light; it is normalized.
func (s *Scene) SetLight(x, y, z float32) {
	n := math32.Sqrt(x*x + y*y + z*z)
	if n == 0 {
		return
	}
	s.lightDir = [3]float32{x / n, y / n, z / n}
}

// Draw renders f. Call between BeginDrawing and EndDrawing, before 2D overlays.
func (s *Scene) Draw(f session.Frame) {
	s.Camera.Position = vec3(f.Camera.Position)
	s.Camera.Target = vec3(f.Camera.Target)
	s.Camera.Up = vec3(f.Up)
	s.Camera.Fovy = float32(f.FovY)

	s.opaque, s.translucent = s.opaque[:0], s.translucent[:0]
	for i := range f.Items {
		it := &f.Items[i]
		if it.Opacity >= 1 {
			s.opaque = append(s.opaque, it)
		} else {
			s.translucent = append(s.translucent, it)
		}
	}

	rl.BeginMode3D(s.Camera)
	rl.DisableBackfaceCulling()
	starColor := rl.Color(s.Palette.Star)
	for _, p := range f.Stars {
		rl.DrawCube(vec3(p), starSize, starSize, starSize, starColor)
	}
	for _, it := range s.opaque {
		s.drawItem(it)
	}
	rl.DisableDepthMask()
	for _, it := range s.translucent {
		s.drawItem(it)
	}
	rl.EnableDepthMask()
	rl.EnableBackfaceCulling()
	rl.EndMode3D()
}

func (s *Scene) base(role scenegraph.Role) color.RGBA {
	switch role {
	case scenegraph.RoleBack:
		return s.Palette.Back
	case scenegraph.RoleLabel:
		return s.Palette.Label
	case scenegraph.RoleEdge:
		return s.Palette.Edge
	case scenegraph.RoleFiller:
		return s.Palette.Filler
	}
	return s.Palette.Front
}

func (s *Scene) drawItem(it *session.Item) {
	base := s.base(it.Role)
	boost := float32(1)
	if it.Panel >= 0 {
		boost += emphasisK * float32(it.Emphasis-world.RestEmphasis)
		if it.Hovered {
			boost += hoverBoost
		}
	}
	alpha := uint8(math32.Min(1, math32.Max(0, float32(it.Opacity))) * 255)

	m := it.Mesh
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		a, b, c := it.World.Apply(tri[0]), it.World.Apply(tri[1]), it.World.Apply(tri[2])
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		light := s.lambert(n) * boost
		col := shade(base, light, alpha)
		rl.DrawTriangle3D(vec3(a), vec3(b), vec3(c), col)
	}
}

// lambert returns ambient plus the two-sided diffuse term for a face with normal n.
func (s *Scene) lambert(n r3.Vec) float32 {
	l := float32(r3.Norm(n))
	if l == 0 {
		return ambient
	}
	d := (float32(n.X)*s.lightDir[0] + float32(n.Y)*s.lightDir[1] + float32(n.Z)*s.lightDir[2]) / l
	return ambient + (1-ambient)*math32.Abs(d)
}

func shade(c color.RGBA, k float32, alpha uint8) rl.Color {
	ch := func(v uint8) uint8 {
		return uint8(math32.Min(255, float32(v)*k))
	}
	return rl.NewColor(ch(c.R), ch(c.G), ch(c.B), alpha)
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
