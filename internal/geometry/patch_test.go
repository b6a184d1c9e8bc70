package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"
)

func patchGen() *rapid.Generator[AngularPatch] {
	return rapid.Custom(func(t *rapid.T) AngularPatch {
		phiStart := rapid.Float64Range(0, math.Pi-0.01).Draw(t, "phiStart")
		phiLength := rapid.Float64Range(0.001, math.Pi-phiStart).Draw(t, "phiLength")
		return AngularPatch{
			PhiStart:       phiStart,
			PhiLength:      phiLength,
			ThetaStart:     rapid.Float64Range(-2*math.Pi, 2*math.Pi).Draw(t, "thetaStart"),
			ThetaLength:    rapid.Float64Range(0.001, 2*math.Pi).Draw(t, "thetaLength"),
			Radius:         rapid.Float64Range(0.1, 50).Draw(t, "radius"),
			WidthSegments:  rapid.IntRange(1, 24).Draw(t, "w"),
			HeightSegments: rapid.IntRange(1, 24).Draw(t, "h"),
		}
	})
}

func TestGeneratePatch_CountsAndNormals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := patchGen().Draw(t, "patch")
		m, err := GeneratePatch(p)
		require.NoError(t, err)

		w, h := p.WidthSegments, p.HeightSegments
		require.Equal(t, (w+1)*(h+1), m.VertexCount())
		require.Equal(t, 2*w*h, m.TriangleCount())
		require.Len(t, m.Normals, m.VertexCount())
		require.Len(t, m.UVs, m.VertexCount())

		for i, n := range m.Normals {
			require.InDelta(t, 1, r3.Norm(n), 1e-12, "normal %d not unit", i)
			// parallel to the position vector and pointing the same way
			cross := r3.Norm(r3.Cross(n, m.Positions[i]))
			require.InDelta(t, 0, cross, 1e-9*p.Radius)
			require.Greater(t, r3.Dot(n, m.Positions[i]), 0.0)
		}
		for _, idx := range m.Indices {
			require.Less(t, int(idx), m.VertexCount())
		}
	})
}

func TestGeneratePatch_WindingFacesOutward(t *testing.T) {
	m, err := GeneratePatch(AngularPatch{
		PhiStart: math.Pi / 3, PhiLength: math.Pi / 3,
		ThetaStart: -0.5, ThetaLength: 1,
		Radius: 10, WidthSegments: 4, HeightSegments: 3,
	})
	require.NoError(t, err)
	for i := 0; i < m.TriangleCount(); i++ {
		tri := m.Triangle(i)
		assert.Greater(t, r3.Dot(tri.Normal(), tri.Centroid()), 0.0, "triangle %d faces inward", i)
	}
}

func TestGeneratePatch_VertexFormula(t *testing.T) {
	p := AngularPatch{
		PhiStart: 0.2, PhiLength: 1.0,
		ThetaStart: 0.3, ThetaLength: 2.0,
		Radius: 2, WidthSegments: 2, HeightSegments: 2,
	}
	m, err := GeneratePatch(p)
	require.NoError(t, err)

	// first vertex: u=0, v=0
	first := m.Positions[0]
	assert.InDelta(t, 2*math.Sin(0.2)*math.Cos(0.3), first.X, 1e-12)
	assert.InDelta(t, 2*math.Cos(0.2), first.Y, 1e-12)
	assert.InDelta(t, 2*math.Sin(0.2)*math.Sin(0.3), first.Z, 1e-12)
	assert.Equal(t, UV{U: 1, V: 1}, m.UVs[0])

	// last vertex: u=1, v=1
	last := m.Positions[len(m.Positions)-1]
	assert.InDelta(t, 2*math.Sin(1.2)*math.Cos(2.3), last.X, 1e-12)
	assert.InDelta(t, 2*math.Cos(1.2), last.Y, 1e-12)
	assert.Equal(t, UV{U: 0, V: 0}, m.UVs[len(m.UVs)-1])
}

func TestGeneratePatch_Invalid(t *testing.T) {
	valid := AngularPatch{PhiLength: 1, ThetaLength: 1, Radius: 1, WidthSegments: 1, HeightSegments: 1}
	cases := map[string]func(p *AngularPatch){
		"zero width segments":  func(p *AngularPatch) { p.WidthSegments = 0 },
		"zero height segments": func(p *AngularPatch) { p.HeightSegments = 0 },
		"zero phi length":      func(p *AngularPatch) { p.PhiLength = 0 },
		"negative theta":       func(p *AngularPatch) { p.ThetaLength = -1 },
		"theta over 2pi":       func(p *AngularPatch) { p.ThetaLength = 7 },
		"phi past pole":        func(p *AngularPatch) { p.PhiStart = 3; p.PhiLength = 1 },
		"negative phi start":   func(p *AngularPatch) { p.PhiStart = -0.5 },
		"zero radius":          func(p *AngularPatch) { p.Radius = 0 },
		"nan radius":           func(p *AngularPatch) { p.Radius = math.NaN() },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			m, err := GeneratePatch(p)
			require.ErrorIs(t, err, ErrInvalidPatch)
			assert.Nil(t, m)
		})
	}
}

func TestAngularPatch_Contains(t *testing.T) {
	p := AngularPatch{PhiStart: 1, PhiLength: 1, ThetaStart: -0.5, ThetaLength: 1}
	assert.True(t, p.Contains(1.5, 0))
	assert.True(t, p.Contains(1.5, 2*math.Pi+0.1))
	assert.False(t, p.Contains(0.5, 0))
	assert.False(t, p.Contains(1.5, 1))
}
