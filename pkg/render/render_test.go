package render

import (
	"strings"
	"testing"

	"github.com/canopyviz/canopy/pkg/graph"
)

func sampleLayout() graph.Layout {
	return graph.Layout{
		Nodes: []graph.PlacedNode{
			{ID: "root", Label: "Root", Position: graph.Position{X: 0, Y: 0}, Size: &graph.Size{Width: 144, Height: 72}},
			{ID: "a", Position: graph.Position{X: -100, Y: 140}},
			{ID: "b", Position: graph.Position{X: 100, Y: 140}},
		},
		Edges: []graph.LayoutEdge{
			{ID: "e1", Source: "root", Target: "a"},
			{ID: "e2", Source: "root", Target: "b"},
		},
	}
}

func TestToDOTPinsPositions(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{})

	// neato honors pinned positions, dot ignores them.
	if !strings.Contains(dot, "layout=neato") {
		t.Error("missing neato engine selection")
	}
	// y is negated: layout y grows down, graphviz y grows up.
	if !strings.Contains(dot, `"root" [label="Root", pos="0.00,-0.00!", width=2.000, height=1.000]`) {
		t.Errorf("root node line missing or wrong:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="-100.00,-140.00!"`) {
		t.Errorf("child position not pinned:\n%s", dot)
	}
	if !strings.Contains(dot, `"root" -> "a";`) || !strings.Contains(dot, `"root" -> "b";`) {
		t.Errorf("edges missing:\n%s", dot)
	}
}

func TestToDOTFallbacks(t *testing.T) {
	dot := ToDOT(sampleLayout(), Options{FallbackSize: graph.Size{Width: 72, Height: 36}})

	// Node "a" has no size or label: fallback size, ID as label.
	if !strings.Contains(dot, `"a" [label="a", pos="-100.00,-140.00!", width=1.000, height=0.500]`) {
		t.Errorf("fallback node line missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(graph.Layout{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty layout should still be a valid digraph:\n%s", dot)
	}
}
