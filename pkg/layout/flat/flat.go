// Package flat computes hierarchical layouts for graphs described as flat
// node and edge arrays rather than a nested tree. Input is not assumed to be
// a clean tree: duplicate parent edges resolve first-edge-wins, edges
// referencing unknown nodes are ignored, and nodes unreachable from the
// resolved root are omitted from the output. None of these conditions is an
// error - the layout sits in a rendering path and always returns its best
// effort.
//
// Sibling order is chosen by a barycenter heuristic that reduces (without
// claiming to minimize) edge crossings for irregular trees.
//
// Layout is deterministic: identical input arrays in identical order always
// produce identical output.
package flat

import (
	"sort"

	"github.com/canopyviz/canopy/pkg/graph"
)

// =============================================================================
// Options
// =============================================================================

// Options configures slot sizing and spacing. The zero value selects the
// documented defaults from the graph package.
type Options struct {
	SlotWidth       float64 // horizontal slot reserved per leaf (default graph.DefaultNodeWidth)
	Gap             float64 // gap between adjacent child subtrees (default graph.DefaultSiblingGap)
	VerticalSpacing float64 // vertical distance between depths (default graph.DefaultVerticalSpacing)

	// AnchorX and AnchorY position the resolved root.
	AnchorX float64
	AnchorY float64
}

func (o Options) withDefaults() Options {
	if o.SlotWidth == 0 {
		o.SlotWidth = graph.DefaultNodeWidth
	}
	if o.Gap == 0 {
		o.Gap = graph.DefaultSiblingGap
	}
	if o.VerticalSpacing == 0 {
		o.VerticalSpacing = graph.DefaultVerticalSpacing
	}
	return o
}

// =============================================================================
// Layout
// =============================================================================

// Layout positions the nodes of a flat graph so that each parent is
// horizontally centered over its children's bounding box. The returned slice
// preserves the input node order, restricted to nodes reachable from the
// resolved root; disconnected components are silently omitted (documented
// fallback, surfaced by callers that care via the length difference).
func Layout(g graph.FlatGraph, opts Options) []graph.PlacedNode {
	if len(g.Nodes) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	h := buildHierarchy(g)
	root := h.resolveRoot(g)

	widths := make(map[string]float64, len(g.Nodes))
	h.subtreeWidth(root, opts, widths, make(map[string]bool))
	h.orderSiblings(root, opts, widths, make(map[string]bool))

	pos := make(map[string]graph.Position, len(g.Nodes))
	h.place(root, opts.AnchorX, 0, opts, widths, pos)

	out := make([]graph.PlacedNode, 0, len(pos))
	for _, n := range g.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			continue // unreachable from the root
		}
		out = append(out, graph.PlacedNode{
			ID:       n.ID,
			Label:    n.Label,
			Level:    n.Level,
			Position: p,
		})
	}
	return out
}

// =============================================================================
// Hierarchy Derivation
// =============================================================================

// hierarchy holds parent/child maps derived from the edge array at call
// time. Relationships are never stored on the input.
type hierarchy struct {
	children map[string][]string
	parent   map[string]string
	index    map[string]int // node ID -> original array index
}

// buildHierarchy derives parent→children and child→parent maps from edges.
// If a node has more than one incoming edge, the first-encountered edge
// wins; later edges neither reparent the node nor appear as children links.
// Edges referencing unknown nodes are dropped.
func buildHierarchy(g graph.FlatGraph) *hierarchy {
	h := &hierarchy{
		children: make(map[string][]string),
		parent:   make(map[string]string),
		index:    make(map[string]int, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		if _, dup := h.index[n.ID]; !dup {
			h.index[n.ID] = i
		}
	}
	for _, e := range g.Edges {
		if _, ok := h.index[e.Source]; !ok {
			continue
		}
		if _, ok := h.index[e.Target]; !ok {
			continue
		}
		if _, taken := h.parent[e.Target]; taken {
			continue // first edge wins
		}
		h.parent[e.Target] = e.Source
		h.children[e.Source] = append(h.children[e.Source], e.Target)
	}
	return h
}

// resolveRoot picks the layout root: a node explicitly flagged as root,
// else the unique node without a parent edge, else the first array entry.
func (h *hierarchy) resolveRoot(g graph.FlatGraph) string {
	for _, n := range g.Nodes {
		if n.Root {
			return n.ID
		}
	}
	parentless := ""
	for _, n := range g.Nodes {
		if _, has := h.parent[n.ID]; has {
			continue
		}
		if parentless != "" {
			return g.Nodes[0].ID // not unique, fall back to first entry
		}
		parentless = n.ID
	}
	if parentless != "" {
		return parentless
	}
	return g.Nodes[0].ID
}

// =============================================================================
// Width Accumulation (bottom-up)
// =============================================================================

// subtreeWidth computes each subtree's width bottom-up: a leaf takes one
// slot, an internal node the sum of its children plus inter-child gaps.
// visiting guards against cycles in tolerated-but-unspecified input.
func (h *hierarchy) subtreeWidth(id string, opts Options, widths map[string]float64, visiting map[string]bool) float64 {
	if w, done := widths[id]; done {
		return w
	}
	if visiting[id] {
		return opts.SlotWidth
	}
	visiting[id] = true
	defer delete(visiting, id)

	kids := h.children[id]
	if len(kids) == 0 {
		widths[id] = opts.SlotWidth
		return opts.SlotWidth
	}
	total := opts.Gap * float64(len(kids)-1)
	for _, c := range kids {
		total += h.subtreeWidth(c, opts, widths, visiting)
	}
	widths[id] = total
	return total
}

// =============================================================================
// Barycenter Sibling Ordering
// =============================================================================

// orderSiblings sorts each node's children by barycenter, ascending. For a
// child with its own children the barycenter is the average offset of those
// grandchildren's subtree midpoints within the child's subtree; a childless
// node keeps its original index as the key. The sort is stable, so ties
// preserve input order and the result stays deterministic.
func (h *hierarchy) orderSiblings(id string, opts Options, widths map[string]float64, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true

	kids := h.children[id]
	if len(kids) == 0 {
		return
	}

	keys := make(map[string]float64, len(kids))
	for i, c := range kids {
		keys[c] = h.barycenter(c, i, opts, widths)
	}
	sort.SliceStable(kids, func(i, j int) bool { return keys[kids[i]] < keys[kids[j]] })

	for _, c := range kids {
		h.orderSiblings(c, opts, widths, visited)
	}
}

func (h *hierarchy) barycenter(id string, originalIndex int, opts Options, widths map[string]float64) float64 {
	kids := h.children[id]
	if len(kids) == 0 {
		return float64(originalIndex)
	}
	var sum, cursor float64
	for _, c := range kids {
		w := widths[c]
		sum += cursor + w/2
		cursor += w + opts.Gap
	}
	return sum / float64(len(kids))
}

// =============================================================================
// Placement (top-down)
// =============================================================================

// place centers the ordered children under the parent's x using their
// subtree widths, recursing top-down. y grows with recursion depth.
func (h *hierarchy) place(id string, x float64, depth int, opts Options, widths map[string]float64, pos map[string]graph.Position) {
	if _, seen := pos[id]; seen {
		return
	}
	pos[id] = graph.Position{X: x, Y: opts.AnchorY + float64(depth)*opts.VerticalSpacing}

	kids := h.children[id]
	if len(kids) == 0 {
		return
	}
	cursor := x - widths[id]/2
	for _, c := range kids {
		w := widths[c]
		h.place(c, cursor+w/2, depth+1, opts, widths, pos)
		cursor += w + opts.Gap
	}
}
