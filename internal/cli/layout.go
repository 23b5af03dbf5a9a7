package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/graph"
	"github.com/canopyviz/canopy/pkg/pipeline"
)

// layoutCommand creates the layout command for tidy tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute a tidy tree layout from a nested tree",
		Long: `Compute a tidy tree layout from a nested tree.

The layout command takes a tree.json file (a nested node with id, label and
children) and computes x/y center positions so that siblings keep a minimum
gap, parents sit centered over their children, and disjoint subtrees never
overlap. The output is a layout.json file that can be rendered with the
'render' command or inspected with 'preview'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayoutTree(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	// Layout flags
	cmd.Flags().Float64Var(&opts.NodeWidth, "node-width", opts.NodeWidth, "node width used for spacing")
	cmd.Flags().Float64Var(&opts.NodeHeight, "node-height", opts.NodeHeight, "node height used for level spacing")
	cmd.Flags().Float64Var(&opts.LevelGap, "level-gap", opts.LevelGap, "vertical gap between levels")
	cmd.Flags().Float64Var(&opts.SiblingGap, "sibling-gap", opts.SiblingGap, "horizontal gap between siblings")
	cmd.Flags().Float64Var(&opts.AnchorX, "anchor-x", opts.AnchorX, "x coordinate the tree is centered on")
	cmd.Flags().Float64Var(&opts.AnchorY, "anchor-y", opts.AnchorY, "y coordinate of the root")

	// Collision flags
	cmd.Flags().BoolVar(&opts.Resolve, "resolve", opts.Resolve, "push overlapping nodes apart after layout")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "minimum gap demanded by --resolve")

	return cmd
}

// runLayoutTree loads the tree, computes the layout, and writes output.
func (c *CLI) runLayoutTree(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	t, err := graph.ReadTreeFile(input)
	if err != nil {
		return fmt.Errorf("load tree %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	ctx = withLogger(ctx, c.Logger)

	spinner := newSpinnerWithContext(ctx, "Computing tree layout...")
	spinner.Start()

	result, err := runner.LayoutTree(ctx, t, opts)
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

// writeLayoutResult writes a pipeline result next to the input file and
// prints the summary shared by the layout and flat commands.
func (c *CLI) writeLayoutResult(result *pipeline.Result, input, output string) error {
	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteLayoutFile(result.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	if result.Stats.DroppedCount > 0 {
		printWarning("%d nodes were unreachable from the root and were omitted", result.Stats.DroppedCount)
	}
	if !result.Stats.ResolveConverged {
		printWarning("overlap resolution hit its iteration budget; some nodes may still overlap")
	}
	printNewline()
	printNextStep("Render", "canopy render "+outputPath)

	return nil
}
