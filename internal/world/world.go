package world

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"sphere-panels/internal/geometry"
	"sphere-panels/internal/layout"
	"sphere-panels/internal/scenegraph"
)

// FrontYaw turns a body's rotation group so that azimuth 0 (+X in body space) faces +Z, the
// side the default camera looks from.
const FrontYaw = -math.Pi / 2

// Body is one independently rotatable sphere of panels.
//
// Node chain, root first: Node (base position, view-driven shrink and opacity) → Float
// (decorative float and breathing) → Spin (the rotation group that drags turn) → panels.
type Body struct {
	Index   int
	Base    r3.Vec
	Radius  float64
	Opacity float64 // resting opacity, restored when returning to overview
	Motion  Motion

	Node   scenegraph.NodeID
	Float  scenegraph.NodeID
	Spin   scenegraph.NodeID
	Filler scenegraph.NodeID

	Panels []*Panel
}

// Panel is one selectable patch of a body.
type Panel struct {
	Body   int
	Index  int
	Region layout.Region
	Center r3.Vec // unit direction of the patch midpoint, body space

	Group scenegraph.NodeID // selectable group, pivot at the patch midpoint
	Front scenegraph.NodeID
	Back  scenegraph.NodeID
	Label scenegraph.NodeID // NoNode when the body has no labels
	Edges []scenegraph.NodeID

	// LayerPose is the rest pose of each layer under Group.
	LayerPose scenegraph.Pose

	Hovered  bool
	Selected bool
	Emphasis float64
}

// Ref identifies a panel by body and panel index.
type Ref struct {
	Body  int
	Panel int
}

func (p *Panel) Ref() Ref { return Ref{Body: p.Body, Panel: p.Index} }

// Backdrop is the slowly spinning point field behind the bodies.
type Backdrop struct {
	Node   scenegraph.NodeID
	Points []r3.Vec
	Spin   float64 // radians per tick about Y
}

// World is the scene built for a session: the graph plus the indexes needed to interpret it.
type World struct {
	Graph    *scenegraph.Graph
	Bodies   []*Body
	Backdrop Backdrop
	// Focus is a top-level slot for layers lifted out of their body while a panel is in detail.
	Focus scenegraph.NodeID

	IdleSpin float64 // radians per tick about the rotation group's Y
	Time     float64 // seconds of decorative motion so far

	panels map[scenegraph.NodeID]*Panel
}

// Build constructs the world. Any invalid layout or patch aborts construction.
func Build(opts Options) (*World, error) {
	if len(opts.Bodies) == 0 {
		return nil, fmt.Errorf("build world: %w", ErrNoBodies)
	}
	g := scenegraph.New()
	w := &World{
		Graph:    g,
		IdleSpin: opts.IdleSpin,
		panels:   make(map[scenegraph.NodeID]*Panel),
	}

	w.Backdrop = Backdrop{
		Node:   g.MustAdd(g.Root(), "backdrop", scenegraph.RoleOverlay, scenegraph.Identity(), nil),
		Points: layout.Fibonacci(opts.BackdropSamples, opts.BackdropRadius),
		Spin:   opts.BackdropSpin,
	}
	w.Focus = g.MustAdd(g.Root(), "focus", scenegraph.RoleGroup, scenegraph.Identity(), nil)

	for i, spec := range opts.Bodies {
		b, err := w.buildBody(i, spec)
		if err != nil {
			return nil, fmt.Errorf("build body %d: %w", i, err)
		}
		w.Bodies = append(w.Bodies, b)
	}
	return w, nil
}

func (w *World) buildBody(index int, spec BodySpec) (*Body, error) {
	g := w.Graph
	if spec.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %g", geometry.ErrInvalidPatch, spec.Radius)
	}
	rows := spec.Rows
	if len(rows) == 0 {
		rows = []int{spec.PanelCount}
	}
	count := spec.PanelCount
	if count == 0 {
		for _, n := range rows {
			count += n
		}
	}
	regions, err := layout.AllocateWith(count, rows, layout.Options{Gap: spec.Gap, Bands: spec.Bands, Centered: true})
	if err != nil {
		return nil, err
	}

	b := &Body{
		Index:   index,
		Base:    spec.Position,
		Radius:  spec.Radius,
		Opacity: spec.Opacity,
		Motion:  spec.Motion,
	}
	bodyPose := scenegraph.Identity()
	bodyPose.Position = spec.Position
	b.Node = g.MustAdd(g.Root(), fmt.Sprintf("body.%d", index), scenegraph.RoleGroup, bodyPose, nil)
	g.Node(b.Node).Opacity = spec.Opacity
	b.Float = g.MustAdd(b.Node, fmt.Sprintf("body.%d.float", index), scenegraph.RoleGroup, scenegraph.Identity(), nil)
	spin := scenegraph.Identity()
	spin.Rotation.Y = FrontYaw
	b.Spin = g.MustAdd(b.Float, fmt.Sprintf("body.%d.spin", index), scenegraph.RoleGroup, spin, nil)
	b.Filler = scenegraph.NoNode

	if spec.Filler {
		mesh, err := geometry.GeneratePatch(geometry.AngularPatch{
			PhiLength:      math.Pi,
			ThetaLength:    2 * math.Pi,
			Radius:         spec.Radius * spec.FillerScale,
			WidthSegments:  32,
			HeightSegments: 16,
		})
		if err != nil {
			return nil, fmt.Errorf("filler: %w", err)
		}
		b.Filler = g.MustAdd(b.Spin, fmt.Sprintf("body.%d.filler", index), scenegraph.RoleFiller, scenegraph.Identity(), mesh)
	}

	for _, r := range regions {
		p, err := w.buildPanel(b, r, spec)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", r.Index, err)
		}
		b.Panels = append(b.Panels, p)
		w.panels[p.Group] = p
	}
	return b, nil
}

func (w *World) buildPanel(b *Body, r layout.Region, spec BodySpec) (*Panel, error) {
	g := w.Graph
	patch := r.Patch(spec.Radius, spec.WidthSegments, spec.HeightSegments)
	front, err := geometry.GeneratePatch(patch)
	if err != nil {
		return nil, err
	}
	backPatch := patch
	backPatch.Radius = spec.Radius * spec.BackScale
	back, err := geometry.GeneratePatch(backPatch)
	if err != nil {
		return nil, err
	}

	center := patch.Center()
	pivot := r3.Scale(spec.Radius, center)
	groupPose := scenegraph.Identity()
	groupPose.Position = pivot
	layerPose := scenegraph.Identity()
	layerPose.Position = r3.Scale(-1, pivot)

	name := fmt.Sprintf("body.%d.panel.%d", b.Index, r.Index)
	p := &Panel{
		Body:      b.Index,
		Index:     r.Index,
		Region:    r,
		Center:    center,
		LayerPose: layerPose,
		Label:     scenegraph.NoNode,
		Emphasis:  RestEmphasis,
	}
	p.Group = g.MustAdd(b.Spin, name, scenegraph.RoleGroup, groupPose, nil)
	p.Front = g.MustAdd(p.Group, name+".front", scenegraph.RoleFront, layerPose, front)
	p.Back = g.MustAdd(p.Group, name+".back", scenegraph.RoleBack, layerPose, back)

	if spec.Label {
		lp := labelPatch(patch, spec.LabelInset)
		lp.Radius = spec.Radius * spec.LabelScale
		label, err := geometry.GeneratePatch(lp)
		if err != nil {
			return nil, fmt.Errorf("label: %w", err)
		}
		p.Label = g.MustAdd(p.Group, name+".label", scenegraph.RoleLabel, layerPose, label)
	}
	if spec.Edges {
		for i, ep := range edgePatches(patch, spec.EdgeWidth) {
			ep.Radius = spec.Radius * spec.EdgeScale
			mesh, err := geometry.GeneratePatch(ep)
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			p.Edges = append(p.Edges, g.MustAdd(p.Group, fmt.Sprintf("%s.edge.%d", name, i), scenegraph.RoleEdge, layerPose, mesh))
		}
	}
	return p, nil
}

// labelPatch shrinks p by inset (a fraction of each span) on all four sides.
func labelPatch(p geometry.AngularPatch, inset float64) geometry.AngularPatch {
	inset = math.Max(0, math.Min(inset, 0.45))
	out := p
	out.PhiStart += p.PhiLength * inset
	out.PhiLength *= 1 - 2*inset
	out.ThetaStart += p.ThetaLength * inset
	out.ThetaLength *= 1 - 2*inset
	return out
}

// edgePatches returns four thin strips along the borders of p: top, bottom, left, right.
func edgePatches(p geometry.AngularPatch, width float64) []geometry.AngularPatch {
	wPhi := math.Min(width, p.PhiLength/4)
	wTheta := math.Min(width, p.ThetaLength/4)
	strip := func(phiStart, phiLength, thetaStart, thetaLength float64, ws, hs int) geometry.AngularPatch {
		return geometry.AngularPatch{
			PhiStart: phiStart, PhiLength: phiLength,
			ThetaStart: thetaStart, ThetaLength: thetaLength,
			Radius: p.Radius, WidthSegments: ws, HeightSegments: hs,
		}
	}
	return []geometry.AngularPatch{
		strip(p.PhiStart, wPhi, p.ThetaStart, p.ThetaLength, p.WidthSegments, 1),
		strip(p.PhiStart+p.PhiLength-wPhi, wPhi, p.ThetaStart, p.ThetaLength, p.WidthSegments, 1),
		strip(p.PhiStart, p.PhiLength, p.ThetaStart, wTheta, 1, p.HeightSegments),
		strip(p.PhiStart, p.PhiLength, p.ThetaStart+p.ThetaLength-wTheta, wTheta, 1, p.HeightSegments),
	}
}

// Panel returns the panel for ref, or nil.
func (w *World) Panel(ref Ref) *Panel {
	if ref.Body < 0 || ref.Body >= len(w.Bodies) {
		return nil
	}
	b := w.Bodies[ref.Body]
	if ref.Panel < 0 || ref.Panel >= len(b.Panels) {
		return nil
	}
	return b.Panels[ref.Panel]
}

// PanelOf walks from node up through its ancestors and returns the first registered panel.
func (w *World) PanelOf(node scenegraph.NodeID) (*Panel, bool) {
	for id := node; id != scenegraph.NoNode; id = w.Graph.Parent(id) {
		if p, ok := w.panels[id]; ok {
			return p, true
		}
	}
	return nil, false
}

// BodyOf returns the body whose subtree contains node.
func (w *World) BodyOf(node scenegraph.NodeID) (*Body, bool) {
	for _, b := range w.Bodies {
		if node == b.Node || w.Graph.IsAncestor(b.Node, node) {
			return b, true
		}
	}
	return nil, false
}

// PanelCount returns the total number of panels.
func (w *World) PanelCount() int {
	return len(w.panels)
}

// EachPanel calls fn for every panel, body by body.
func (w *World) EachPanel(fn func(*Panel)) {
	for _, b := range w.Bodies {
		for _, p := range b.Panels {
			fn(p)
		}
	}
}
