package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/funnelviz/funnelviz/pkg/chart"
	"github.com/funnelviz/funnelviz/pkg/funnel"
	"github.com/funnelviz/funnelviz/pkg/palette"
)

// Rows reserved above and below the funnel for the title and status bar.
const (
	tuiHeaderRows = 2
	tuiFooterRows = 2
	tuiMinWidth   = 20
	tuiMinHeight  = 8
)

// viewCommand creates the view command for exploring a chart in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var paletteName string

	cmd := &cobra.Command{
		Use:   "view [chart file]",
		Short: "Explore a chart interactively in the terminal",
		Long: `Explore a chart interactively in the terminal.

The view command solves the funnel for the current terminal size and draws
it with colored blocks. Moving the mouse highlights the section under the
cursor; clicking reports it in the status bar. Resizing the terminal
re-solves the geometry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(args[0], paletteName)
		},
	}

	cmd.Flags().StringVar(&paletteName, "palette", "", "color palette: ocean (default), sunset, forest, mono")

	return cmd
}

// runView loads the chart and starts the bubbletea program.
func (c *CLI) runView(input, paletteName string) error {
	ch, err := chart.ReadFile(input)
	if err != nil {
		return err
	}
	series, err := ch.Series()
	if err != nil {
		return err
	}

	name := paletteName
	if name == "" {
		name = ch.PaletteName()
	}
	pal, err := palette.New(name, series.Len())
	if err != nil {
		return err
	}

	model := newViewModel(ch, series, pal)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

// =============================================================================
// ViewModel - Interactive funnel display
// =============================================================================

// viewModel is the bubbletea model for the interactive funnel view. The
// funnel is solved in terminal cell coordinates, so mouse positions map
// directly onto geometry points.
type viewModel struct {
	chart  *chart.Chart
	series *funnel.Series
	pal    *palette.Palette
	ctrl   *funnel.InteractionController

	geom      *funnel.Geometry
	width     int
	height    int
	lastEvent string
	solveErr  error
}

func newViewModel(ch *chart.Chart, series *funnel.Series, pal *palette.Palette) viewModel {
	return viewModel{
		chart:  ch,
		series: series,
		pal:    pal,
		ctrl:   funnel.NewInteractionController(series),
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resolve()

	case tea.MouseMsg:
		if m.geom == nil {
			return m, nil
		}
		p := funnel.Point{
			X: float64(msg.X),
			Y: float64(msg.Y-tuiHeaderRows) + 0.5,
		}
		m.handleMouse(msg, p)
	}
	return m, nil
}

// resolve re-solves the geometry for the current terminal size. The
// controller's highlight survives only if the section still exists; the
// geometry itself is stale the moment the window resizes.
func (m *viewModel) resolve() {
	plotH := m.height - tuiHeaderRows - tuiFooterRows
	if m.width < tuiMinWidth || plotH < tuiMinHeight-tuiHeaderRows-tuiFooterRows {
		m.geom = nil
		return
	}

	g, err := funnel.Solve(m.series, funnel.Config{
		Width:         float64(m.width),
		Height:        float64(plotH),
		WidthRatio:    1.0 / 3.0,
		SectionMargin: 1,
	})
	if err != nil {
		m.geom = nil
		m.solveErr = err
		return
	}
	m.geom = g
	m.solveErr = nil
}

// handleMouse feeds one mouse event to the interaction controller and
// records the resulting host events for the status bar.
func (m *viewModel) handleMouse(msg tea.MouseMsg, p funnel.Point) {
	var (
		tr  funnel.Transition
		err error
	)

	switch {
	case msg.Action == tea.MouseActionMotion:
		tr, err = m.ctrl.OnPointerMove(m.geom, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		tr, err = m.ctrl.OnClick(m.geom, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		tr, err = m.ctrl.OnRightClick(m.geom, p)
	default:
		return
	}
	if err != nil {
		return
	}

	for _, ev := range tr.Events {
		switch ev.Kind {
		case funnel.EventClick, funnel.EventRightClick:
			m.lastEvent = fmt.Sprintf("%s %s", ev.Kind, ev.Point.Label)
		}
	}
}

func (m viewModel) View() string {
	var b strings.Builder

	title := m.chart.Title
	if title == "" {
		title = "Funnel"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("move: highlight  click: select  q: quit"))
	b.WriteString("\n")

	if m.geom == nil {
		if m.solveErr != nil {
			b.WriteString(StyleWarning.Render(m.solveErr.Error()))
		} else {
			b.WriteString(StyleDim.Render("terminal too small"))
		}
		return b.String()
	}

	plotH := m.height - tuiHeaderRows - tuiFooterRows
	for row := 0; row < plotH; row++ {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString(m.statusBar())
	return b.String()
}

// renderRow draws one terminal row of the funnel: padding, then a colored
// block spanning the section's width at that height.
func (m viewModel) renderRow(row int) string {
	y := float64(row) + 0.5
	idx, left, right := sectionSpanAt(m.geom, y)
	if idx == funnel.NoSection || right <= left {
		return ""
	}

	span := int(right) - int(left)
	if span < 1 {
		span = 1
	}

	fill := m.pal.Hex(idx)
	if idx == m.ctrl.Highlighted() {
		fill = m.pal.HighlightHex(idx)
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(fill)).
		Foreground(lipgloss.Color(m.pal.TextHex(idx)))

	content := strings.Repeat(" ", span)
	if int(m.geom.Centroid(idx).Y) == row {
		point := m.series.Point(idx)
		label := fmt.Sprintf("%s %.1f%%", point.Label, m.geom.Weights[idx]*100)
		if len(label) < span {
			pad := (span - len(label)) / 2
			content = strings.Repeat(" ", pad) + label + strings.Repeat(" ", span-pad-len(label))
		}
	}

	return strings.Repeat(" ", int(left)) + style.Render(content)
}

// statusBar shows the highlighted section's details and the last click.
func (m viewModel) statusBar() string {
	var b strings.Builder
	b.WriteString("\n")

	if idx := m.ctrl.Highlighted(); idx != funnel.NoSection {
		point := m.series.Point(idx)
		b.WriteString(StyleHighlight.Render(point.Label))
		b.WriteString(StyleDim.Render(" · "))
		b.WriteString(StyleValue.Render(fmt.Sprintf("%g", point.Value)))
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · %.1f%%", m.geom.Weights[idx]*100)))
	} else {
		b.WriteString(StyleDim.Render("hover a section for details"))
	}

	if m.lastEvent != "" {
		b.WriteString(StyleDim.Render("  |  "))
		b.WriteString(StyleSuccess.Render(m.lastEvent))
	}
	return b.String()
}

// sectionSpanAt returns the section covering height y and its horizontal
// extent there, interpolated along the section's side edges.
func sectionSpanAt(g *funnel.Geometry, y float64) (int, float64, float64) {
	for i, v := range g.Vertices {
		if y < v[0].Y || y > v[3].Y {
			continue
		}
		t := 0.0
		if v[3].Y > v[0].Y {
			t = (y - v[0].Y) / (v[3].Y - v[0].Y)
		}
		left := v[0].X + t*(v[3].X-v[0].X)
		right := v[1].X + t*(v[2].X-v[1].X)
		return i, left, right
	}
	return funnel.NoSection, 0, 0
}
