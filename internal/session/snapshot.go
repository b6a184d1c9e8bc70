package session

import (
	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/camera"
	"sphere-panels/internal/geometry"
	"sphere-panels/internal/scenegraph"
	"sphere-panels/internal/world"
)

// Item is one mesh to draw.
type Item struct {
	Node    scenegraph.NodeID
	Role    scenegraph.Role
	Mesh    *geometry.Mesh
	World   scenegraph.Transform
	Opacity float64

	// Panel state; Panel is -1 for meshes that belong to no panel (fillers).
	Body     int
	Panel    int
	Emphasis float64
	Hovered  bool
	Selected bool
}

// Frame is everything the renderer needs for one frame, in world space.
type Frame struct {
	Camera camera.Pose
	Up     r3.Vec
	FovY   float64
	State  string
	Items  []Item
	Stars  []r3.Vec
}

// Snapshot collects the visible meshes with their world transforms and accumulated opacity,
// plus the backdrop points. Items are in scene-graph order.
func (s *Session) Snapshot() Frame {
	g := s.World.Graph
	f := Frame{
		Camera: s.Camera.Current,
		Up:     s.Camera.Up,
		FovY:   s.Camera.FovY,
		State:  s.State(),
	}
	opacity := map[scenegraph.NodeID]float64{scenegraph.NoNode: 1}
	_ = g.Walk(g.Root(), func(n *scenegraph.Node, xf scenegraph.Transform) bool {
		if !n.Visible {
			return false
		}
		o := opacity[n.Parent] * n.Opacity
		opacity[n.ID] = o
		if n.Mesh == nil || o <= 0 {
			return true
		}
		it := Item{Node: n.ID, Role: n.Role, Mesh: n.Mesh, World: xf, Opacity: o, Body: -1, Panel: -1, Emphasis: world.RestEmphasis}
		if b, ok := s.World.BodyOf(n.ID); ok {
			it.Body = b.Index
		}
		if p, ok := s.World.PanelOf(n.ID); ok {
			it.Body, it.Panel = p.Body, p.Index
			it.Emphasis, it.Hovered, it.Selected = p.Emphasis, p.Hovered, p.Selected
		} else if lifted := s.liftedPanel(n.ID); lifted != nil {
			it.Body, it.Panel = lifted.Body, lifted.Index
			it.Emphasis, it.Selected = lifted.Emphasis, lifted.Selected
		}
		f.Items = append(f.Items, it)
		return true
	})

	bd := s.World.Backdrop
	if g.IsVisible(bd.Node) && len(bd.Points) > 0 {
		if xf, err := g.WorldTransform(bd.Node); err == nil {
			f.Stars = make([]r3.Vec, len(bd.Points))
			for i, p := range bd.Points {
				f.Stars[i] = xf.Apply(p)
			}
		}
	}
	return f
}

// liftedPanel returns the panel whose label is node while that label sits in the focus slot.
func (s *Session) liftedPanel(node scenegraph.NodeID) *world.Panel {
	ref, ok := s.View.Selected()
	if !ok {
		return nil
	}
	p := s.World.Panel(ref)
	if p != nil && p.Label == node && s.World.Lifted(p) {
		return p
	}
	return nil
}
