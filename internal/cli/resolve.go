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

// resolveCommand creates the resolve command for overlap resolution.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		output   string
		incoming string
	)
	opts := c.layoutOptions()

	cmd := &cobra.Command{
		Use:   "resolve [layout.json]",
		Short: "Push overlapping nodes of a layout apart",
		Long: `Push overlapping nodes of a layout apart.

Without --incoming, every node of the layout may move until no two nodes
overlap by more than the margin (or the iteration budget runs out).

With --incoming, the positional argument is treated as a frozen, manually
arranged canvas: only the nodes of the --incoming layout move, and the
result written is the incoming layout with adjusted positions. Use this when
new content streams onto a canvas the user already curated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], incoming, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.resolved.json)")
	cmd.Flags().StringVar(&incoming, "incoming", "", "layout of new nodes to place against the frozen input")
	cmd.Flags().Float64Var(&opts.Margin, "margin", opts.Margin, "minimum gap demanded between nodes")
	cmd.Flags().IntVar(&opts.MaxIterations, "max-iterations", opts.MaxIterations, "iteration budget for the relaxation loop")

	return cmd
}

// runResolve loads the layout(s), resolves overlaps, and writes output.
func (c *CLI) runResolve(ctx context.Context, input, incoming string, opts pipeline.Options, output string) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Nodes without measured sizes collide as default-sized boxes.
	fallback := graph.Size{Width: graph.DefaultNodeWidth, Height: graph.DefaultNodeHeight}
	p := newProgress(c.Logger)

	subject := l
	subjectPath := input
	var converged bool
	var iterations int

	if incoming == "" {
		result := runner.ResolveAll(ctx, l.Rects(fallback), opts)
		subject = l.ApplyRects(result.Rects)
		converged, iterations = result.Converged, result.Iterations
	} else {
		in, err := graph.ReadLayoutFile(incoming)
		if err != nil {
			return fmt.Errorf("load incoming layout %s: %w", incoming, err)
		}
		result := runner.ResolveNew(ctx, l.Rects(fallback), in.Rects(fallback), opts)
		subject = in.ApplyRects(result.Rects)
		subjectPath = incoming
		converged, iterations = result.Converged, result.Iterations
	}

	p.done(fmt.Sprintf("Resolved %d rectangles", len(subject.Nodes)))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(subjectPath, filepath.Ext(subjectPath))
		outputPath = base + ".resolved.json"
	}
	if err := graph.WriteLayoutFile(subject, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Overlaps resolved in %d iterations", iterations)
	printFile(outputPath)
	if !converged {
		printWarning("iteration budget exhausted; some nodes may still overlap")
	}
	printNewline()
	printNextStep("Render", "canopy render "+outputPath)

	return nil
}
