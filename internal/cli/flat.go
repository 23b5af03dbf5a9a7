package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/pipeline"
)

// flatCommand creates the flat command for hierarchical flat-list layouts.
func (c *CLI) flatCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "flat [graph.json]",
		Short: "Compute a hierarchical layout from flat node/edge arrays",
		Long: `Compute a hierarchical layout from flat node/edge arrays.

The flat command takes a graph.json file with "nodes" and "edges" arrays,
derives the hierarchy from the edges, and places each parent centered over
its children's bounding box. Sibling order is chosen to reduce edge
crossings. Nodes unreachable from the root are omitted with a warning.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayoutFlat(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	// Layout flags
	cmd.Flags().Float64Var(&opts.NodeWidth, "slot-width", opts.NodeWidth, "horizontal slot reserved per leaf")
	cmd.Flags().Float64Var(&opts.SiblingGap, "gap", opts.SiblingGap, "gap between adjacent subtrees")
	cmd.Flags().Float64Var(&opts.VerticalSpacing, "vertical-spacing", opts.VerticalSpacing, "vertical distance between depths")
	cmd.Flags().Float64Var(&opts.AnchorX, "anchor-x", opts.AnchorX, "x coordinate of the root")
	cmd.Flags().Float64Var(&opts.AnchorY, "anchor-y", opts.AnchorY, "y coordinate of the root")

	// Collision flags
	cmd.Flags().BoolVar(&opts.Resolve, "resolve", opts.Resolve, "push overlapping nodes apart after layout")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "minimum gap demanded by --resolve")

	return cmd
}

// runLayoutFlat loads the flat graph, computes the layout, and writes output.
func (c *CLI) runLayoutFlat(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadFlatGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	ctx = withLogger(ctx, c.Logger)

	spinner := newSpinnerWithContext(ctx, "Computing flat layout...")
	spinner.Start()

	result, err := runner.LayoutFlat(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if spinner.Cancelled() {
		return ctx.Err()
	}

	return c.writeLayoutResult(result, input, output)
}
