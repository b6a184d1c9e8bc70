package scenegraph

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSingular is returned when a transform cannot be inverted (a zero scale somewhere in the chain).
var ErrSingular = errors.New("singular transform")

// Pose is a node's local placement: translation, Euler rotation (radians, applied X then Y then Z
// in the intrinsic sense, i.e. matrix Rx·Ry·Rz) and per-axis scale.
type Pose struct {
	Position r3.Vec
	Rotation r3.Vec
	Scale    r3.Vec
}

// Identity returns the pose that leaves its children untouched.
func Identity() Pose {
	return Pose{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

// Quaternion returns the rotation part of the pose as a unit quaternion.
func (p Pose) Quaternion() quat.Number {
	qx := quat.Number(r3.NewRotation(p.Rotation.X, r3.Vec{X: 1}))
	qy := quat.Number(r3.NewRotation(p.Rotation.Y, r3.Vec{Y: 1}))
	qz := quat.Number(r3.NewRotation(p.Rotation.Z, r3.Vec{Z: 1}))
	return quat.Mul(qx, quat.Mul(qy, qz))
}

// Transform returns the affine map for this pose: x ↦ R·S·x + Position.
func (p Pose) Transform() Transform {
	rot := r3.Rotation(p.Quaternion()).Mat()
	scale := r3.NewMat([]float64{
		p.Scale.X, 0, 0,
		0, p.Scale.Y, 0,
		0, 0, p.Scale.Z,
	})
	basis := r3.NewMat(nil)
	basis.Mul(rot, scale)
	return Transform{Basis: basis, Origin: p.Position}
}

// Transform is an affine map x ↦ Basis·x + Origin. Basis is rotation times scale (no shear
// is ever introduced by the graph itself).
type Transform struct {
	Basis  *r3.Mat
	Origin r3.Vec
}

// IdentityTransform returns the identity map.
func IdentityTransform() Transform {
	return Transform{Basis: r3.Eye()}
}

// Apply maps a point.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Basis.MulVec(p), t.Origin)
}

// ApplyDir maps a direction (no translation, not normalized).
func (t Transform) ApplyDir(d r3.Vec) r3.Vec {
	return t.Basis.MulVec(d)
}

// Mul returns t∘u: first u, then t.
func (t Transform) Mul(u Transform) Transform {
	basis := r3.NewMat(nil)
	basis.Mul(t.Basis, u.Basis)
	return Transform{Basis: basis, Origin: t.Apply(u.Origin)}
}

// Inverse returns the inverse map.
func (t Transform) Inverse() (Transform, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.Basis); err != nil {
		return Transform{}, ErrSingular
	}
	basis := r3.NewMat(nil)
	basis.CloneFrom(&inv)
	return Transform{Basis: basis, Origin: r3.Scale(-1, basis.MulVec(t.Origin))}, nil
}

// NormalMatrix returns the inverse-transpose of the basis, which maps surface normals.
// Callers still normalize the result.
func (t Transform) NormalMatrix() (*r3.Mat, error) {
	inv, err := t.Inverse()
	if err != nil {
		return nil, err
	}
	nm := r3.NewMat(nil)
	nm.CloneFrom(inv.Basis.T())
	return nm, nil
}

// Pose decomposes t back into position, XYZ Euler rotation and scale. A reflected basis
// (negative determinant) is folded into a negative X scale.
func (t Transform) Pose() Pose {
	cols := [3]r3.Vec{t.Basis.VecCol(0), t.Basis.VecCol(1), t.Basis.VecCol(2)}
	scale := r3.Vec{X: r3.Norm(cols[0]), Y: r3.Norm(cols[1]), Z: r3.Norm(cols[2])}
	if t.Basis.Det() < 0 {
		scale.X = -scale.X
	}
	div := func(v r3.Vec, s float64) r3.Vec {
		if s == 0 {
			return r3.Vec{}
		}
		return r3.Scale(1/s, v)
	}
	c0, c1, c2 := div(cols[0], scale.X), div(cols[1], scale.Y), div(cols[2], scale.Z)

	// Rotation matrix entries mRC (row, col) from the normalized columns.
	m11, m12, m13 := c0.X, c1.X, c2.X
	m22, m23 := c1.Y, c2.Y
	m32, m33 := c1.Z, c2.Z

	var rot r3.Vec
	rot.Y = math.Asin(clampUnit(m13))
	if math.Abs(m13) < 0.9999999 {
		rot.X = math.Atan2(-m23, m33)
		rot.Z = math.Atan2(-m12, m11)
	} else {
		rot.X = math.Atan2(m32, m22)
		rot.Z = 0
	}
	return Pose{Position: t.Origin, Rotation: rot, Scale: scale}
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
