// Package render exports computed layouts as Graphviz DOT and rasterized
// images. Positions are already decided by the layout packages, so the DOT
// output pins every node with pos="x,y!" and rendering uses the neato engine,
// which honors pinned positions instead of computing its own.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/canopyviz/canopy/pkg/graph"
)

// pointsPerInch converts between DOT's two unit systems: pos attributes are
// in points, node width/height in inches.
const pointsPerInch = 72.0

// Options configures DOT export.
type Options struct {
	// FallbackSize is used for nodes that carry no measured size.
	// Zero fields fall back to the graph package defaults.
	FallbackSize graph.Size
}

func (o Options) withDefaults() Options {
	if o.FallbackSize.Width == 0 {
		o.FallbackSize.Width = graph.DefaultNodeWidth
	}
	if o.FallbackSize.Height == 0 {
		o.FallbackSize.Height = graph.DefaultNodeHeight
	}
	return o
}

// ToDOT converts a layout to Graphviz DOT with pinned node positions. Layout
// y grows downward while Graphviz y grows upward, so y is negated on export.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(l graph.Layout, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		w, h := opts.FallbackSize.Width, opts.FallbackSize.Height
		if n.Size != nil {
			w, h = n.Size.Width, n.Size.Height
		}
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.2f,%.2f!\", width=%.3f, height=%.3f];\n",
			n.ID, label, n.Position.X, -n.Position.Y, w/pointsPerInch, h/pointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
