package graph

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Default node dimensions, used whenever measured render sizes are not
// supplied by the caller. All values are canvas units (pixels).
const (
	// DefaultTreeNodeWidth and DefaultTreeNodeHeight describe the uniform
	// small node used for plain tree drawings.
	DefaultTreeNodeWidth  = 120.0
	DefaultTreeNodeHeight = 48.0

	// DefaultNodeWidth and DefaultNodeHeight describe a generic medium node.
	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 80.0

	// DefaultCardWidth and DefaultCardHeight describe a large rich-content
	// node (cards with markdown bodies, images, etc).
	DefaultCardWidth  = 320.0
	DefaultCardHeight = 200.0
)

// Default spacing between nodes, in canvas units.
const (
	DefaultLevelGap        = 60.0
	DefaultSiblingGap      = 24.0
	DefaultVerticalSpacing = 140.0
	DefaultCollisionMargin = 20.0
)

// =============================================================================
// Tree - Nested Input Format
// =============================================================================

// Tree is a strictly nested single-root tree, the input to the tree layout
// engine. Exactly one root, no cycles, no shared children. The structure is
// immutable from the layout engine's point of view: layout never writes to it.
type Tree struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Children []*Tree `json:"children,omitempty"`
}

// Count returns the number of nodes in the tree, including the root.
// Returns 0 for a nil tree.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}

// =============================================================================
// FlatGraph - Flat Node/Edge Input Format
// =============================================================================

// FlatNode is a node descriptor in the flat input format. Parent/child
// relationships are not stored here - they are derived from edges at call
// time. Root marks the node an external generator designated as the tree
// root; when absent, the layout falls back to the unique parentless node.
type FlatNode struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Level int    `json:"level,omitempty"`
	Root  bool   `json:"root,omitempty"`
}

// FlatEdge is a directed parent→child edge in the flat input format.
type FlatEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// FlatGraph bundles flat node and edge arrays. The structure is not
// guaranteed to be a clean tree: duplicate parents and disconnected
// components are tolerated (see the layout/flat package for the fallback
// policies).
type FlatGraph struct {
	Nodes []FlatNode `json:"nodes"`
	Edges []FlatEdge `json:"edges"`
}

// =============================================================================
// Layout - Render-Ready Output Format
// =============================================================================

// Position is a node center on the canvas. Positions are always centers,
// never top-left corners - parent-centering math depends on it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's rendered dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlacedNode is a node with a computed position. Size is optional: it is
// populated when the caller supplied measured dimensions or when the layout
// applied defaults, and omitted when irrelevant.
type PlacedNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Level    int      `json:"level"`
	Position Position `json:"position"`
	Size     *Size    `json:"size,omitempty"`
}

// LayoutEdge is a render-ready edge with its own identifier.
type LayoutEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Layout is the flattened render-ready pair handed to the canvas layer.
type Layout struct {
	Nodes []PlacedNode `json:"nodes"`
	Edges []LayoutEdge `json:"edges"`
}

// Node returns the placed node with the given ID and true, or a zero node
// and false if not present.
func (l Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// =============================================================================
// Rect - Collision Domain
// =============================================================================

// Rect is an ephemeral sized rectangle used by the collision resolver.
// X and Y are the rectangle's center. Rects carry no hierarchy information.
type Rect struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Left returns the left edge of the rectangle.
func (r Rect) Left() float64 { return r.X - r.Width/2 }

// Right returns the right edge of the rectangle.
func (r Rect) Right() float64 { return r.X + r.Width/2 }

// Top returns the top edge of the rectangle.
func (r Rect) Top() float64 { return r.Y - r.Height/2 }

// Bottom returns the bottom edge of the rectangle.
func (r Rect) Bottom() float64 { return r.Y + r.Height/2 }

// Rects converts a layout to collision rectangles. Nodes without a size get
// fallback, which callers typically set to one of the default size
// constants. The returned slice preserves node order.
func (l Layout) Rects(fallback Size) []Rect {
	rects := make([]Rect, len(l.Nodes))
	for i, n := range l.Nodes {
		size := fallback
		if n.Size != nil {
			size = *n.Size
		}
		rects[i] = Rect{
			ID:     n.ID,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Width:  size.Width,
			Height: size.Height,
		}
	}
	return rects
}

// ApplyRects writes resolved rectangle centers back onto a layout, matched
// by ID. Rects without a matching node are ignored; nodes without a matching
// rect keep their position. Returns a new layout - the input is not mutated.
func (l Layout) ApplyRects(rects []Rect) Layout {
	byID := make(map[string]Rect, len(rects))
	for _, r := range rects {
		byID[r.ID] = r
	}

	out := Layout{
		Nodes: make([]PlacedNode, len(l.Nodes)),
		Edges: make([]LayoutEdge, len(l.Edges)),
	}
	copy(out.Edges, l.Edges)
	for i, n := range l.Nodes {
		if r, ok := byID[n.ID]; ok {
			n.Position = Position{X: r.X, Y: r.Y}
		}
		out.Nodes[i] = n
	}
	return out
}
