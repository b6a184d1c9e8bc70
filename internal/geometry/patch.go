package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// angleSlack absorbs rounding when band boundaries are summed by the allocator (e.g. 3 * (π/3) vs π).
const angleSlack = 1e-9

// ErrInvalidPatch is returned (wrapped) for any AngularPatch that cannot produce a meaningful mesh.
var ErrInvalidPatch = errors.New("invalid angular patch")

// AngularPatch is a rectangular region in (polar, azimuthal) angle space on a sphere of Radius.
// Phi is the polar angle measured from +Y (0 = north pole, π = south pole); theta is the azimuth in the XZ plane.
// WidthSegments subdivide theta, HeightSegments subdivide phi.
type AngularPatch struct {
	PhiStart       float64 `yaml:"phi_start"`
	PhiLength      float64 `yaml:"phi_length"`
	ThetaStart     float64 `yaml:"theta_start"`
	ThetaLength    float64 `yaml:"theta_length"`
	Radius         float64 `yaml:"radius"`
	WidthSegments  int     `yaml:"width_segments"`
	HeightSegments int     `yaml:"height_segments"`
}

// Validate reports whether p can be tessellated. Zero segments, non-positive spans, a zero radius,
// or angles outside phi ∈ [0, π] / thetaLength ≤ 2π are rejected with ErrInvalidPatch.
func (p AngularPatch) Validate() error {
	switch {
	case p.WidthSegments < 1 || p.HeightSegments < 1:
		return fmt.Errorf("%w: segments must be >= 1 (got %dx%d)", ErrInvalidPatch, p.WidthSegments, p.HeightSegments)
	case !(p.PhiLength > 0):
		return fmt.Errorf("%w: phiLength must be > 0 (got %g)", ErrInvalidPatch, p.PhiLength)
	case !(p.ThetaLength > 0):
		return fmt.Errorf("%w: thetaLength must be > 0 (got %g)", ErrInvalidPatch, p.ThetaLength)
	case p.ThetaLength > 2*math.Pi+angleSlack:
		return fmt.Errorf("%w: thetaLength %g exceeds 2π", ErrInvalidPatch, p.ThetaLength)
	case p.PhiStart < -angleSlack || p.PhiStart > math.Pi+angleSlack:
		return fmt.Errorf("%w: phiStart %g outside [0, π]", ErrInvalidPatch, p.PhiStart)
	case p.PhiStart+p.PhiLength > math.Pi+angleSlack:
		return fmt.Errorf("%w: phiStart+phiLength %g exceeds π", ErrInvalidPatch, p.PhiStart+p.PhiLength)
	case p.Radius == 0 || math.IsNaN(p.Radius) || math.IsInf(p.Radius, 0) || math.IsNaN(p.ThetaStart) || math.IsInf(p.ThetaStart, 0):
		return fmt.Errorf("%w: radius %g / thetaStart %g must be finite and radius non-zero", ErrInvalidPatch, p.Radius, p.ThetaStart)
	}
	return nil
}

// Center returns the unit direction of the patch's angular midpoint.
func (p AngularPatch) Center() r3.Vec {
	return Direction(p.PhiStart+p.PhiLength/2, p.ThetaStart+p.ThetaLength/2)
}

// Contains reports whether the direction (phi, theta) lies inside the patch. Theta is compared modulo 2π.
func (p AngularPatch) Contains(phi, theta float64) bool {
	if phi < p.PhiStart || phi > p.PhiStart+p.PhiLength {
		return false
	}
	d := math.Mod(theta-p.ThetaStart, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d <= p.ThetaLength
}

// Direction returns the unit vector for polar angle phi and azimuth theta:
// (sin φ cos θ, cos φ, sin φ sin θ).
func Direction(phi, theta float64) r3.Vec {
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return r3.Vec{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
}

// GeneratePatch tessellates p into a curved quad grid. Pure and deterministic.
// The mesh has (w+1)(h+1) vertices and 2wh triangles. Normals are the normalized positions
// (exact sphere section), and UVs are flipped (1-u, 1-v) so content is not mirrored.
// Triangles wind counter-clockwise when seen from outside, whatever the radius; a back shell
// is a second patch at a smaller radius drawn with back-face rendering, not a flipped winding.
func GeneratePatch(p AngularPatch) (*Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, h := p.WidthSegments, p.HeightSegments
	m := &Mesh{
		Positions: make([]r3.Vec, 0, (w+1)*(h+1)),
		Normals:   make([]r3.Vec, 0, (w+1)*(h+1)),
		UVs:       make([]UV, 0, (w+1)*(h+1)),
		Indices:   make([]uint32, 0, 6*w*h),
	}

	for iy := 0; iy <= h; iy++ {
		v := float64(iy) / float64(h)
		phi := p.PhiStart + v*p.PhiLength
		for ix := 0; ix <= w; ix++ {
			u := float64(ix) / float64(w)
			theta := p.ThetaStart + u*p.ThetaLength

			pos := r3.Scale(p.Radius, Direction(phi, theta))
			m.Positions = append(m.Positions, pos)
			m.Normals = append(m.Normals, r3.Unit(pos))
			m.UVs = append(m.UVs, UV{U: 1 - u, V: 1 - v})
		}
	}

	// Cell corners: a=(ix,iy) b=(ix+1,iy) c=(ix,iy+1) d=(ix+1,iy+1).
	// (a,b,c) and (b,d,c) put +u then +v around the face, whose cross product points away from the center.
	stride := w + 1
	for iy := 0; iy < h; iy++ {
		for ix := 0; ix < w; ix++ {
			a := uint32(iy*stride + ix)
			b := a + 1
			c := a + uint32(stride)
			d := c + 1
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	return m, nil
}
