package tree

import "github.com/canopyviz/canopy/pkg/graph"

// none marks an empty arena handle (no thread, no parent).
const none = -1

// rtNode is the algorithm-private working record for one tree node. The
// prelim/mod/change/shift accumulators and the thread/ancestor back-references
// are exactly the fields of the Buchheim linear-time walker. thread and
// ancestor are non-owning: they are indices into the arena, never pointers,
// so the arena slice remains the sole owner of every node and no reference
// cycles exist. None of these fields leak into the output.
type rtNode struct {
	id    string
	label string

	parent   int
	children []int
	order    int // index among siblings, used by moveSubtree
	level    int

	prelim float64 // preliminary x in abstract units
	mod    float64 // modifier accumulated for the whole subtree
	change float64 // per-sibling change from distributed shifts
	shift  float64 // pending shift from apportioning

	thread   int // contour shortcut into the arena
	ancestor int // nearest apportioning ancestor candidate

	x float64 // final x in abstract units
}

// arena holds all working nodes indexed by integer handle. Index 0 is the
// root. The arena lives only for the duration of one layout call.
type arena struct {
	nodes []rtNode
}

// buildArena flattens the input tree into an arena in pre-order.
func buildArena(t *graph.Tree) *arena {
	a := &arena{nodes: make([]rtNode, 0, t.Count())}
	a.add(t, none, 0, 0)
	return a
}

func (a *arena) add(t *graph.Tree, parent, order, level int) int {
	idx := len(a.nodes)
	a.nodes = append(a.nodes, rtNode{
		id:       t.ID,
		label:    t.Label,
		parent:   parent,
		order:    order,
		level:    level,
		thread:   none,
		ancestor: idx, // each node starts as its own ancestor
	})
	for i, c := range t.Children {
		child := a.add(c, idx, i, level+1)
		a.nodes[idx].children = append(a.nodes[idx].children, child)
	}
	return idx
}

// leftSibling returns the sibling immediately left of v, or none.
func (a *arena) leftSibling(v int) int {
	n := a.nodes[v]
	if n.parent == none || n.order == 0 {
		return none
	}
	return a.nodes[n.parent].children[n.order-1]
}

// nextLeft returns the next node on the left contour of v's subtree:
// the first child when v is internal, otherwise v's thread.
func (a *arena) nextLeft(v int) int {
	if kids := a.nodes[v].children; len(kids) > 0 {
		return kids[0]
	}
	return a.nodes[v].thread
}

// nextRight returns the next node on the right contour of v's subtree:
// the last child when v is internal, otherwise v's thread.
func (a *arena) nextRight(v int) int {
	if kids := a.nodes[v].children; len(kids) > 0 {
		return kids[len(kids)-1]
	}
	return a.nodes[v].thread
}

// separation returns the spacing between two nodes in abstract units:
// adjacent siblings sit one unit apart, nodes from different parent subtrees
// two units, giving unrelated branches extra breathing room.
func (a *arena) separation(v, w int) float64 {
	if a.nodes[v].parent == a.nodes[w].parent {
		return 1
	}
	return 2
}
