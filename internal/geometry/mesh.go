package geometry

import "gonum.org/v1/gonum/spatial/r3"

// UV is a texture coordinate pair.
type UV struct {
	U, V float64
}

// Mesh is the indexed triangle list consumed by the renderer and by hit testing.
// Positions, Normals and UVs are parallel slices; Indices holds three entries per triangle.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	UVs       []UV
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three corner positions of triangle i in mesh-local space.
func (m *Mesh) Triangle(i int) r3.Triangle {
	return r3.Triangle{
		m.Positions[m.Indices[3*i]],
		m.Positions[m.Indices[3*i+1]],
		m.Positions[m.Indices[3*i+2]],
	}
}

// BoundingRadius returns the largest distance of any vertex from the mesh origin.
func (m *Mesh) BoundingRadius() float64 {
	var r float64
	for _, p := range m.Positions {
		r = max(r, r3.Norm(p))
	}
	return r
}
