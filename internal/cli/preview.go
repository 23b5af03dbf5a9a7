package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/canopyviz/canopy/pkg/graph"
)

// previewCommand creates the preview command for inspecting layouts in the
// terminal.
func (c *CLI) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [layout.json]",
		Short: "Pan around a layout in the terminal",
		Long: `Pan around a layout in the terminal.

The preview command opens a full-screen canvas showing node labels at their
computed positions with dotted edges between them. Useful for sanity-checking
a layout without rendering an image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := graph.ReadLayoutFile(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			if len(l.Nodes) == 0 {
				printInfo("Layout is empty, nothing to preview")
				return nil
			}

			p := tea.NewProgram(NewCanvasModel(l), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
