// Package tree computes Reingold-Tilford drawings of strictly nested
// single-root trees: every parent is horizontally centered over its
// children, all nodes of a depth share one y, and no two subtree extents
// overlap. The implementation is the Buchheim linear-time variant, so a
// layout costs O(n) regardless of tree shape.
//
// Layout is a pure function of its input: it retains no state between
// calls, never mutates the input tree, and produces bit-identical output
// for identical input.
//
// All output positions are node centers (see the graph package position
// contract).
package tree

import (
	"math"

	"github.com/canopyviz/canopy/pkg/graph"
)

// =============================================================================
// Options
// =============================================================================

// Options configures node dimensions and spacing. The zero value selects the
// documented defaults from the graph package.
type Options struct {
	NodeWidth  float64 // node width in canvas units (default graph.DefaultTreeNodeWidth)
	NodeHeight float64 // node height (default graph.DefaultTreeNodeHeight)
	LevelGap   float64 // vertical gap between depths (default graph.DefaultLevelGap)
	SiblingGap float64 // horizontal gap between adjacent siblings (default graph.DefaultSiblingGap)

	// AnchorX and AnchorY place the midpoint of the root's full rendered
	// extent. Defaults to the canvas origin.
	AnchorX float64
	AnchorY float64
}

func (o Options) withDefaults() Options {
	if o.NodeWidth == 0 {
		o.NodeWidth = graph.DefaultTreeNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = graph.DefaultTreeNodeHeight
	}
	if o.LevelGap == 0 {
		o.LevelGap = graph.DefaultLevelGap
	}
	if o.SiblingGap == 0 {
		o.SiblingGap = graph.DefaultSiblingGap
	}
	return o
}

// =============================================================================
// Node - Layout Output
// =============================================================================

// Node is one positioned node of the layout tree. X and Y are the node's
// center. LeftExtent and RightExtent span the node's entire subtree, which
// makes laid-out trees cheap to pack side by side. The tree returned by
// Layout exclusively owns its nodes; it is never persisted or mutated after
// construction.
type Node struct {
	ID          string
	Label       string
	X, Y        float64
	LeftExtent  float64
	RightExtent float64
	Width       float64
	Height      float64
	Level       int
	Children    []*Node
}

// =============================================================================
// Layout
// =============================================================================

// Layout computes positions for a nested tree. A nil tree yields a nil
// result; a single node lands exactly at the anchor. Layout never fails:
// this code sits in a rendering path, so graceful results beat errors.
func Layout(t *graph.Tree, opts Options) *Node {
	if t == nil {
		return nil
	}
	opts = opts.withDefaults()

	a := buildArena(t)
	a.firstWalk(0)
	a.secondWalk(0, -a.nodes[0].prelim)

	// One abstract unit equals one node width plus the sibling gap.
	unit := opts.NodeWidth + opts.SiblingGap
	root := a.emit(0, unit, opts)

	// Shift the whole tree so the midpoint of the root's full extent (not
	// the root's own coordinate) sits at the anchor.
	dx := opts.AnchorX - (root.LeftExtent+root.RightExtent)/2
	root.translate(dx, opts.AnchorY)
	return root
}

// emit converts arena node v and its subtree into output nodes, scaling
// abstract units to canvas units and computing subtree extents bottom-up.
func (a *arena) emit(v int, unit float64, opts Options) *Node {
	rt := a.nodes[v]
	n := &Node{
		ID:     rt.id,
		Label:  rt.label,
		X:      rt.x * unit,
		Y:      float64(rt.level) * (opts.NodeHeight + opts.LevelGap),
		Width:  opts.NodeWidth,
		Height: opts.NodeHeight,
		Level:  rt.level,
	}
	n.LeftExtent = n.X - n.Width/2
	n.RightExtent = n.X + n.Width/2
	for _, c := range rt.children {
		child := a.emit(c, unit, opts)
		n.Children = append(n.Children, child)
		n.LeftExtent = math.Min(n.LeftExtent, child.LeftExtent)
		n.RightExtent = math.Max(n.RightExtent, child.RightExtent)
	}
	return n
}

func (n *Node) translate(dx, dy float64) {
	n.X += dx
	n.Y += dy
	n.LeftExtent += dx
	n.RightExtent += dx
	for _, c := range n.Children {
		c.translate(dx, dy)
	}
}

// Walk visits every node of the layout tree pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the layout tree.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// =============================================================================
// Flatten - Render-Ready View
// =============================================================================

// EdgeIDFunc produces an identifier for the edge from source to target.
// Callers that need a different scheme inject their own generator;
// DefaultEdgeID is the deterministic fallback and the pipeline default.
type EdgeIDFunc func(source, target string) string

// DefaultEdgeID derives a deterministic edge identifier from its endpoints.
func DefaultEdgeID(source, target string) string {
	return "e:" + source + ":" + target
}

// Flatten converts a layout tree into the render-ready node/edge pair
// consumed by the canvas layer. A nil edgeID falls back to DefaultEdgeID,
// keeping Flatten deterministic.
func Flatten(root *Node, edgeID EdgeIDFunc) graph.Layout {
	if root == nil {
		return graph.Layout{}
	}
	if edgeID == nil {
		edgeID = DefaultEdgeID
	}

	var out graph.Layout
	root.Walk(func(n *Node) {
		out.Nodes = append(out.Nodes, graph.PlacedNode{
			ID:       n.ID,
			Label:    n.Label,
			Level:    n.Level,
			Position: graph.Position{X: n.X, Y: n.Y},
			Size:     &graph.Size{Width: n.Width, Height: n.Height},
		})
		for _, c := range n.Children {
			out.Edges = append(out.Edges, graph.LayoutEdge{
				ID:     edgeID(n.ID, c.ID),
				Source: n.ID,
				Target: c.ID,
			})
		}
	})
	return out
}
