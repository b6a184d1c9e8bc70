package hittest

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/camera"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/world"
)

// DefaultFrontFacingMargin is the minimum cosine between a hit's world normal and the direction
// back to the camera. Hits closer to grazing are rejected so selection does not flicker at seams.
const DefaultFrontFacingMargin = 0.1

// Hit is one ray/triangle intersection.
type Hit struct {
	Node     scenegraph.NodeID
	Role     scenegraph.Role
	Triangle int
	Distance float64
	Point    r3.Vec
	Normal   r3.Vec // world space, unit
}

// Result is a resolved selection.
type Result struct {
	Panel *world.Panel
	Hit   Hit
}

// Resolver finds the front-facing panel under a ray.
type Resolver struct {
	World  *world.World
	Margin float64
}

// New returns a resolver over w with the default margin.
func New(w *world.World) *Resolver {
	return &Resolver{World: w, Margin: DefaultFrontFacingMargin}
}

// Intersect returns every ray/triangle hit on visible meshes of the bodies accepted by allow
// (all bodies when allow is nil), nearest first. Fully transparent bodies are skipped. Equal
// distances are ordered by node id, then triangle, so the order is deterministic.
func (r *Resolver) Intersect(ray camera.Ray, allow func(body int) bool) []Hit {
	var hits []Hit
	for _, b := range r.World.Bodies {
		if allow != nil && !allow(b.Index) {
			continue
		}
		if r.World.Graph.WorldOpacity(b.Node) == 0 {
			continue
		}
		var bodyHits []Hit
		err := r.World.Graph.Walk(b.Node, func(n *scenegraph.Node, xf scenegraph.Transform) bool {
			if !n.Visible {
				return false
			}
			if n.Mesh != nil {
				bodyHits = appendMeshHits(bodyHits, n, xf, ray)
			}
			return true
		})
		if err != nil {
			// a body whose node was removed from the graph has nothing to hit
			continue
		}
		hits = append(hits, bodyHits...)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].Node != hits[j].Node {
			return hits[i].Node < hits[j].Node
		}
		return hits[i].Triangle < hits[j].Triangle
	})
	return hits
}

func appendMeshHits(hits []Hit, n *scenegraph.Node, xf scenegraph.Transform, ray camera.Ray) []Hit {
	inv, err := xf.Inverse()
	if err != nil {
		return hits
	}
	origin := inv.Apply(ray.Origin)
	dir := inv.ApplyDir(ray.Dir)
	for i := 0; i < n.Mesh.TriangleCount(); i++ {
		tri := n.Mesh.Triangle(i)
		t, ok := intersectTriangle(origin, dir, tri)
		if !ok {
			continue
		}
		normal := inv.Basis.MulVecTrans(tri.Normal())
		if r3.Norm(normal) == 0 {
			continue
		}
		hits = append(hits, Hit{
			Node:     n.ID,
			Role:     n.Role,
			Triangle: i,
			Distance: t,
			Point:    ray.At(t),
			Normal:   r3.Unit(normal),
		})
	}
	return hits
}

// Resolve returns the nearest hit that is an interactive surface, faces the camera by more than
// Margin, and belongs to a registered panel. No result is a normal outcome.
func (r *Resolver) Resolve(ray camera.Ray, allow func(body int) bool) (Result, bool) {
	for _, h := range r.Intersect(ray, allow) {
		if excluded(h.Role) {
			continue
		}
		toEye := r3.Unit(r3.Sub(ray.Origin, h.Point))
		if r3.Dot(h.Normal, toEye) <= r.Margin {
			continue
		}
		p, ok := r.World.PanelOf(h.Node)
		if !ok {
			continue
		}
		return Result{Panel: p, Hit: h}, true
	}
	return Result{}, false
}

// ResolvePixel builds the ray through pixel (px, py) of vp and resolves it.
func (r *Resolver) ResolvePixel(cam *camera.Camera, vp camera.Viewport, px, py float64, allow func(body int) bool) (Result, bool) {
	return r.Resolve(cam.PixelRay(vp, px, py), allow)
}

func excluded(role scenegraph.Role) bool {
	switch role {
	case scenegraph.RoleFiller, scenegraph.RoleOverlay, scenegraph.RoleBack, scenegraph.RoleGroup:
		return true
	}
	return false
}

const parallelEpsilon = 1e-12

// intersectTriangle is the Möller–Trumbore test. Both faces count; t is in units of dir.
func intersectTriangle(origin, dir r3.Vec, tri r3.Triangle) (float64, bool) {
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	p := r3.Cross(dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < parallelEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := r3.Sub(origin, tri[0])
	u := r3.Dot(s, p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := r3.Dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := r3.Dot(e2, q) * inv
	if t <= parallelEpsilon {
		return 0, false
	}
	return t, true
}
