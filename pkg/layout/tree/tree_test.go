package tree

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

const tolerance = 1e-9

// leaf builds a childless tree node.
func leaf(id string) *graph.Tree {
	return &graph.Tree{ID: id, Label: id}
}

// branch builds a tree node with children.
func branch(id string, children ...*graph.Tree) *graph.Tree {
	return &graph.Tree{ID: id, Label: id, Children: children}
}

// comb builds a maximally unbalanced tree of the given depth where every
// internal node has one leaf child and one deeper child.
func comb(depth int) *graph.Tree {
	if depth == 0 {
		return leaf("comb-0")
	}
	return branch(fmt.Sprintf("comb-%d", depth), leaf(fmt.Sprintf("tooth-%d", depth)), comb(depth-1))
}

func TestLayoutNilAndSingle(t *testing.T) {
	if got := Layout(nil, Options{}); got != nil {
		t.Fatalf("Layout(nil) = %v, want nil", got)
	}

	root := Layout(&graph.Tree{ID: "root", Label: "R"}, Options{})
	if root == nil {
		t.Fatal("Layout(single) = nil")
	}
	if root.X != 0 || root.Y != 0 {
		t.Errorf("single node at (%v, %v), want anchor (0, 0)", root.X, root.Y)
	}
	if root.Count() != 1 {
		t.Errorf("Count = %d, want 1", root.Count())
	}
}

func TestLayoutParentCentering(t *testing.T) {
	// 3-level worked example from the drawing contract: root → [A, B],
	// A → [A1, A2], nodeWidth=120, siblingGap=24.
	input := branch("root",
		branch("A", leaf("A1"), leaf("A2")),
		leaf("B"),
	)
	opts := Options{NodeWidth: 120, SiblingGap: 24}
	root := Layout(input, opts)

	a, b := root.Children[0], root.Children[1]
	if got, want := root.X, (a.X+b.X)/2; math.Abs(got-want) > tolerance {
		t.Errorf("root.X = %v, want midpoint of children %v", got, want)
	}
	a1, a2 := a.Children[0], a.Children[1]
	if got, want := a.X, (a1.X+a2.X)/2; math.Abs(got-want) > tolerance {
		t.Errorf("A.X = %v, want midpoint of children %v", got, want)
	}
	if a2.X-a1.X < 120+24 {
		t.Errorf("siblings %v and %v closer than nodeWidth+siblingGap", a1.X, a2.X)
	}
}

func TestLayoutParentCenteredOverChildExtremes(t *testing.T) {
	// For any tree, every parent's x equals the mean of its min and max
	// child x.
	trees := map[string]*graph.Tree{
		"Wide":       branch("r", leaf("a"), leaf("b"), leaf("c"), leaf("d"), leaf("e")),
		"Unbalanced": comb(6),
		"Mixed": branch("r",
			branch("a", leaf("a1"), branch("a2", leaf("a2x"), leaf("a2y"), leaf("a2z"))),
			leaf("b"),
			branch("c", leaf("c1"), leaf("c2")),
		),
	}

	for name, input := range trees {
		t.Run(name, func(t *testing.T) {
			Layout(input, Options{}).Walk(func(n *Node) {
				if len(n.Children) == 0 {
					return
				}
				lo, hi := math.Inf(1), math.Inf(-1)
				for _, c := range n.Children {
					lo = math.Min(lo, c.X)
					hi = math.Max(hi, c.X)
				}
				if want := (lo + hi) / 2; math.Abs(n.X-want) > tolerance {
					t.Errorf("node %s: x = %v, want mean of child extremes %v", n.ID, n.X, want)
				}
			})
		})
	}
}

func TestLayoutLevels(t *testing.T) {
	opts := Options{NodeWidth: 100, NodeHeight: 40, LevelGap: 60}
	root := Layout(comb(5), opts)

	yByLevel := map[int]float64{}
	root.Walk(func(n *Node) {
		if y, seen := yByLevel[n.Level]; seen {
			if y != n.Y {
				t.Errorf("node %s: y = %v, want %v shared by level %d", n.ID, n.Y, y, n.Level)
			}
			return
		}
		yByLevel[n.Level] = n.Y
	})

	for level, y := range yByLevel {
		if want := float64(level) * (40 + 60); y != want {
			t.Errorf("level %d: y = %v, want %v", level, y, want)
		}
	}
}

func TestLayoutNoOverlap(t *testing.T) {
	trees := map[string]*graph.Tree{
		"Comb":  comb(8),
		"Bushy": branch("r", branch("a", leaf("a1"), leaf("a2"), leaf("a3")), branch("b", leaf("b1")), branch("c", leaf("c1"), leaf("c2"), leaf("c3"), leaf("c4"))),
		"TwoDeepArms": branch("r",
			branch("l", branch("l1", leaf("l1a"), leaf("l1b")), branch("l2", leaf("l2a"), leaf("l2b"))),
			branch("q", branch("q1", leaf("q1a"), leaf("q1b")), branch("q2", leaf("q2a"), leaf("q2b"))),
		),
	}

	for name, input := range trees {
		t.Run(name, func(t *testing.T) {
			root := Layout(input, Options{NodeWidth: 100, NodeHeight: 40})

			byLevel := map[int][]*Node{}
			root.Walk(func(n *Node) { byLevel[n.Level] = append(byLevel[n.Level], n) })

			for level, nodes := range byLevel {
				for i := 0; i < len(nodes); i++ {
					for j := i + 1; j < len(nodes); j++ {
						a, b := nodes[i], nodes[j]
						if math.Abs(a.X-b.X) < 100-tolerance {
							t.Errorf("level %d: nodes %s (x=%v) and %s (x=%v) overlap", level, a.ID, a.X, b.ID, b.X)
						}
					}
				}
			}
		})
	}
}

func TestLayoutRootExtentCentering(t *testing.T) {
	// A heavy left arm drags the extent midpoint away from the root's own
	// x; the shift must target the extent midpoint, not the root.
	input := branch("r",
		branch("heavy", leaf("h1"), leaf("h2"), leaf("h3"), leaf("h4")),
		leaf("light"),
	)
	root := Layout(input, Options{AnchorX: 50})
	if mid := (root.LeftExtent + root.RightExtent) / 2; math.Abs(mid-50) > tolerance {
		t.Errorf("extent midpoint = %v, want anchor 50", mid)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	input := branch("r",
		branch("a", leaf("a1"), branch("a2", leaf("x"), leaf("y"))),
		branch("b", leaf("b1"), leaf("b2"), leaf("b3")),
	)

	first := Flatten(Layout(input, Options{}), nil)
	second := Flatten(Layout(input, Options{}), nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs on identical input differ")
	}
}

func TestFlatten(t *testing.T) {
	input := branch("r", leaf("a"), leaf("b"))
	out := Flatten(Layout(input, Options{NodeWidth: 100, NodeHeight: 40}), nil)

	if len(out.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(out.Nodes))
	}
	if len(out.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(out.Edges))
	}
	if out.Edges[0].ID != DefaultEdgeID("r", "a") {
		t.Errorf("edge ID = %q, want %q", out.Edges[0].ID, DefaultEdgeID("r", "a"))
	}
	for _, n := range out.Nodes {
		if n.Size == nil || n.Size.Width != 100 || n.Size.Height != 40 {
			t.Errorf("node %s: size = %+v, want 100x40", n.ID, n.Size)
		}
	}

	// Injected generator wins over the default.
	custom := Flatten(Layout(input, Options{}), func(s, d string) string { return s + "->" + d })
	if custom.Edges[0].ID != "r->a" {
		t.Errorf("custom edge ID = %q, want r->a", custom.Edges[0].ID)
	}
}

func TestFlattenEmpty(t *testing.T) {
	out := Flatten(nil, nil)
	if len(out.Nodes) != 0 || len(out.Edges) != 0 {
		t.Errorf("Flatten(nil) = %+v, want empty layout", out)
	}
}
