package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/canopyviz/canopy/pkg/graph"
)

// Canvas styles
var (
	canvasNodeStyle   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	canvasEdgeStyle   = lipgloss.NewStyle().Foreground(colorDim)
	canvasStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// CanvasModel - Layout preview with panning
// =============================================================================

// CanvasModel is the bubbletea model for panning around a computed layout.
// Canvas coordinates are mapped to terminal cells with a horizontal scale;
// the vertical scale is doubled because terminal cells are roughly twice as
// tall as they are wide.
type CanvasModel struct {
	Layout graph.Layout

	// CenterX and CenterY are the canvas coordinates shown at the middle of
	// the viewport.
	CenterX, CenterY float64

	// Scale is canvas units per terminal column.
	Scale float64

	Width, Height int
}

// NewCanvasModel creates a canvas model centered on the layout's bounds.
func NewCanvasModel(l graph.Layout) CanvasModel {
	m := CanvasModel{
		Layout: l,
		Scale:  8,
		Width:  80,
		Height: 24,
	}
	if len(l.Nodes) > 0 {
		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for _, n := range l.Nodes {
			minX = math.Min(minX, n.Position.X)
			maxX = math.Max(maxX, n.Position.X)
			minY = math.Min(minY, n.Position.Y)
			maxY = math.Max(maxY, n.Position.Y)
		}
		m.CenterX = (minX + maxX) / 2
		m.CenterY = (minY + maxY) / 2
	}
	return m
}

func (m CanvasModel) Init() tea.Cmd {
	return nil
}

func (m CanvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	panStep := 4 * m.Scale

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.CenterX -= panStep
		case "right", "l":
			m.CenterX += panStep
		case "up", "k":
			m.CenterY -= panStep
		case "down", "j":
			m.CenterY += panStep
		case "+", "=":
			if m.Scale > 1 {
				m.Scale /= 2
			}
		case "-", "_":
			if m.Scale < 256 {
				m.Scale *= 2
			}
		case "0":
			reset := NewCanvasModel(m.Layout)
			reset.Width, reset.Height = m.Width, m.Height
			return reset, nil
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m CanvasModel) View() string {
	rows := m.Height - 3 // title, help, status
	if rows < 5 {
		rows = 5
	}
	cols := m.Width
	if cols < 20 {
		cols = 20
	}

	grid := make([][]rune, rows)
	styles := make([][]*lipgloss.Style, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
		styles[i] = make([]*lipgloss.Style, cols)
	}

	// Edge endpoints first so node labels draw over them.
	for _, e := range m.Layout.Edges {
		src, ok1 := m.Layout.Node(e.Source)
		dst, ok2 := m.Layout.Node(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		m.plotLine(grid, styles, src.Position, dst.Position, cols, rows)
	}
	for _, n := range m.Layout.Nodes {
		m.plotLabel(grid, styles, n, cols, rows)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Layout Preview"))
	b.WriteString("\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			ch := string(grid[r][c])
			if s := styles[r][c]; s != nil {
				b.WriteString(s.Render(ch))
			} else {
				b.WriteString(ch)
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(canvasStatusStyle.Render(fmt.Sprintf(
		"center (%.0f, %.0f)  scale 1:%.0f  %d nodes",
		m.CenterX, m.CenterY, m.Scale, len(m.Layout.Nodes))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←↓↑→/hjkl pan  +/- zoom  0 reset  q quit"))

	return b.String()
}

// cell maps a canvas position to a grid cell. Vertical scale is doubled to
// compensate for the terminal cell aspect ratio.
func (m CanvasModel) cell(p graph.Position, cols, rows int) (col, row int) {
	col = cols/2 + int(math.Round((p.X-m.CenterX)/m.Scale))
	row = rows/2 + int(math.Round((p.Y-m.CenterY)/(m.Scale*2)))
	return col, row
}

func (m CanvasModel) plotLabel(grid [][]rune, styles [][]*lipgloss.Style, n graph.PlacedNode, cols, rows int) {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	label = "[" + label + "]"

	col, row := m.cell(n.Position, cols, rows)
	col -= len(label) / 2
	if row < 0 || row >= rows {
		return
	}
	for i, ch := range label {
		c := col + i
		if c < 0 || c >= cols {
			continue
		}
		grid[row][c] = ch
		styles[row][c] = &canvasNodeStyle
	}
}

// plotLine draws a coarse dotted segment between two canvas positions.
func (m CanvasModel) plotLine(grid [][]rune, styles [][]*lipgloss.Style, from, to graph.Position, cols, rows int) {
	c0, r0 := m.cell(from, cols, rows)
	c1, r1 := m.cell(to, cols, rows)

	steps := int(math.Max(math.Abs(float64(c1-c0)), math.Abs(float64(r1-r0))))
	if steps == 0 {
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c := c0 + int(math.Round(t*float64(c1-c0)))
		r := r0 + int(math.Round(t*float64(r1-r0)))
		if c < 0 || c >= cols || r < 0 || r >= rows {
			continue
		}
		if grid[r][c] == ' ' {
			grid[r][c] = '·'
			styles[r][c] = &canvasEdgeStyle
		}
	}
}
