package scenegraph

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/geometry"
)

var (
	// ErrNoNode is returned for an id that does not name a node in the graph.
	ErrNoNode = errors.New("no such node")
	// ErrCycle is returned when a reparent would make a node its own ancestor.
	ErrCycle = errors.New("reparent would create a cycle")
)

// NodeID addresses a node in a Graph. IDs are stable for the life of the graph.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Role tells renderers and the hit tester what a mesh node is for.
type Role int

const (
	RoleGroup   Role = iota // transform only, no mesh
	RoleFront               // outward panel surface
	RoleBack                // inward shell, drawn back-side only
	RoleLabel               // label overlay on a panel
	RoleEdge                // border strip of a panel
	RoleFiller              // inner sphere filling the gaps
	RoleOverlay             // non-interactive shell
)

func (r Role) String() string {
	switch r {
	case RoleGroup:
		return "group"
	case RoleFront:
		return "front"
	case RoleBack:
		return "back"
	case RoleLabel:
		return "label"
	case RoleEdge:
		return "edge"
	case RoleFiller:
		return "filler"
	case RoleOverlay:
		return "overlay"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Node is one entry of the arena. Opacity is the node's own factor; the effective value is the
// product along the ancestor chain (see WorldOpacity).
type Node struct {
	ID       NodeID
	Name     string
	Parent   NodeID
	Children []NodeID
	Pose     Pose
	Visible  bool
	Opacity  float64
	Role     Role
	Mesh     *geometry.Mesh
}

// Graph is an arena of nodes. Node 0 is the root and cannot be reparented.
type Graph struct {
	nodes []*Node
}

// New returns a graph holding only the root.
func New() *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, &Node{ID: 0, Name: "root", Parent: NoNode, Pose: Identity(), Visible: true, Opacity: 1})
	return g
}

// Root returns the id of the root node.
func (g *Graph) Root() NodeID { return 0 }

// Len returns the number of nodes, root included.
func (g *Graph) Len() int { return len(g.nodes) }

// Add creates a visible, opaque child of parent with the given pose and mesh (nil for groups).
func (g *Graph) Add(parent NodeID, name string, role Role, pose Pose, mesh *geometry.Mesh) (NodeID, error) {
	p, err := g.get(parent)
	if err != nil {
		return NoNode, err
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &Node{
		ID:      id,
		Name:    name,
		Parent:  parent,
		Pose:    pose,
		Visible: true,
		Opacity: 1,
		Role:    role,
		Mesh:    mesh,
	})
	p.Children = append(p.Children, id)
	return id, nil
}

// MustAdd is Add for construction code whose parents are known to exist.
func (g *Graph) MustAdd(parent NodeID, name string, role Role, pose Pose, mesh *geometry.Mesh) NodeID {
	id, err := g.Add(parent, name, role, pose, mesh)
	if err != nil {
		panic(err)
	}
	return id
}

// Node returns the node for id, or nil. The pointer stays valid; callers mutate Pose, Visible
// and Opacity through it.
func (g *Graph) Node(id NodeID) *Node {
	n, _ := g.get(id)
	return n
}

func (g *Graph) get(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrNoNode, id)
	}
	return g.nodes[id], nil
}

// Parent returns the parent id of id, or NoNode for the root or an unknown id.
func (g *Graph) Parent(id NodeID) NodeID {
	n, err := g.get(id)
	if err != nil {
		return NoNode
	}
	return n.Parent
}

// Children returns a copy of id's child list.
func (g *Graph) Children(id NodeID) []NodeID {
	n, err := g.get(id)
	if err != nil {
		return nil
	}
	return append([]NodeID(nil), n.Children...)
}

// LocalTransform returns the transform of id relative to its parent.
func (g *Graph) LocalTransform(id NodeID) (Transform, error) {
	n, err := g.get(id)
	if err != nil {
		return Transform{}, err
	}
	return n.Pose.Transform(), nil
}

// WorldTransform composes the local transforms from the root down to id.
func (g *Graph) WorldTransform(id NodeID) (Transform, error) {
	n, err := g.get(id)
	if err != nil {
		return Transform{}, err
	}
	t := n.Pose.Transform()
	for p := n.Parent; p != NoNode; p = g.nodes[p].Parent {
		t = g.nodes[p].Pose.Transform().Mul(t)
	}
	return t, nil
}

// WorldPosition returns the world-space origin of id.
func (g *Graph) WorldPosition(id NodeID) (r3.Vec, error) {
	t, err := g.WorldTransform(id)
	if err != nil {
		return r3.Vec{}, err
	}
	return t.Origin, nil
}

// IsAncestor reports whether a is a strict ancestor of id.
func (g *Graph) IsAncestor(a, id NodeID) bool {
	n, err := g.get(id)
	if err != nil {
		return false
	}
	for p := n.Parent; p != NoNode; p = g.nodes[p].Parent {
		if p == a {
			return true
		}
	}
	return false
}

// Reparent moves id under newParent while keeping its world transform, rewriting its local pose
// to parent⁻¹·world. The node is appended to the end of the new parent's child list.
func (g *Graph) Reparent(id, newParent NodeID) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	if _, err := g.get(newParent); err != nil {
		return err
	}
	if id == g.Root() {
		return fmt.Errorf("%w: the root cannot move", ErrCycle)
	}
	if id == newParent || g.IsAncestor(id, newParent) {
		return fmt.Errorf("%w: %d under %d", ErrCycle, id, newParent)
	}
	if n.Parent == newParent {
		return nil
	}

	world, err := g.WorldTransform(id)
	if err != nil {
		return err
	}
	parentWorld, err := g.WorldTransform(newParent)
	if err != nil {
		return err
	}
	inv, err := parentWorld.Inverse()
	if err != nil {
		return fmt.Errorf("reparent %d under %d: %w", id, newParent, err)
	}

	old := g.nodes[n.Parent]
	for i, c := range old.Children {
		if c == id {
			old.Children = append(old.Children[:i], old.Children[i+1:]...)
			break
		}
	}
	n.Parent = newParent
	g.nodes[newParent].Children = append(g.nodes[newParent].Children, id)
	n.Pose = inv.Mul(world).Pose()
	return nil
}

// Walk visits id and its descendants depth-first, parents before children, passing each node's
// world transform. Returning false from fn skips that node's subtree.
func (g *Graph) Walk(id NodeID, fn func(n *Node, world Transform) bool) error {
	n, err := g.get(id)
	if err != nil {
		return err
	}
	parent := IdentityTransform()
	if n.Parent != NoNode {
		if parent, err = g.WorldTransform(n.Parent); err != nil {
			return err
		}
	}
	g.walk(n, parent, fn)
	return nil
}

func (g *Graph) walk(n *Node, parent Transform, fn func(*Node, Transform) bool) {
	world := parent.Mul(n.Pose.Transform())
	if !fn(n, world) {
		return
	}
	for _, c := range n.Children {
		g.walk(g.nodes[c], world, fn)
	}
}

// IsVisible reports whether id and all its ancestors are visible.
func (g *Graph) IsVisible(id NodeID) bool {
	for p := id; p != NoNode; {
		n, err := g.get(p)
		if err != nil || !n.Visible {
			return false
		}
		p = n.Parent
	}
	return true
}

// WorldOpacity is the product of Opacity along the chain from the root to id.
func (g *Graph) WorldOpacity(id NodeID) float64 {
	o := 1.0
	for p := id; p != NoNode; {
		n, err := g.get(p)
		if err != nil {
			return 0
		}
		o *= n.Opacity
		p = n.Parent
	}
	return o
}

// Find returns the first node with the given name, searching in id order.
func (g *Graph) Find(name string) (NodeID, bool) {
	for _, n := range g.nodes {
		if n.Name == name {
			return n.ID, true
		}
	}
	return NoNode, false
}
