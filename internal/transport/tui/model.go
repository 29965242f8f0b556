package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"periodic-table-service/internal/app"
	"periodic-table-service/internal/domain"
	"periodic-table-service/internal/surface"
)

// surfaceChangedMsg tells the model the surface state has pending changes.
type surfaceChangedMsg struct{}

type styles struct {
	tile      lipgloss.Style
	cursor    lipgloss.Style
	selected  lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	flash     lipgloss.Style
	shake     lipgloss.Style
}

func newStyles() styles {
	tile := lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	return styles{
		tile:      tile,
		cursor:    tile.Reverse(true),
		selected:  tile.Foreground(lipgloss.Color("33")).Bold(true),
		correct:   tile.Background(lipgloss.Color("35")).Foreground(lipgloss.Color("15")),
		incorrect: tile.Background(lipgloss.Color("160")).Foreground(lipgloss.Color("15")),
		panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		flash:     lipgloss.NewStyle().BorderForeground(lipgloss.Color("35")),
		shake:     lipgloss.NewStyle().BorderForeground(lipgloss.Color("160")),
	}
}

// Model is a terminal host for one Controller.
type Model struct {
	ctrl     *app.Controller
	state    *surface.State
	elements []domain.ElementEntry
	grid     map[[2]int]int // (row, col) -> element index
	rows     []int
	cursor   int
	styles   styles
}

// New builds a model over a controller and the surface state it writes to.
func New(ctrl *app.Controller, state *surface.State) Model {
	elements := ctrl.Elements()
	m := Model{
		ctrl:     ctrl,
		state:    state,
		elements: elements,
		grid:     make(map[[2]int]int, len(elements)),
		styles:   newStyles(),
	}
	seen := map[int]bool{}
	for i, e := range elements {
		row, col := e.Row, e.Column
		if row == 0 || col == 0 {
			// no layout hints: fall back to rows of 18 in registry order
			row, col = i/18+1, i%18+1
		}
		m.grid[[2]int{row, col}] = i
		if !seen[row] {
			seen[row] = true
			m.rows = append(m.rows, row)
		}
	}
	sort.Ints(m.rows)
	return m
}

func waitForChange(state *surface.State) tea.Cmd {
	return func() tea.Msg {
		<-state.Changes()
		return surfaceChangedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.state)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case surfaceChangedMsg:
		m.state.Flush()
		return m, waitForChange(m.state)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.ctrl.Close()
			return m, tea.Quit
		case "left", "h":
			m.move(0, -1)
		case "right", "l":
			m.move(0, 1)
		case "up", "k":
			m.move(-1, 0)
		case "down", "j":
			m.move(1, 0)
		case " ":
			m.ctrl.Click(m.elements[m.cursor].Ref)
		case "enter":
			m.ctrl.HandleKey("Enter", app.Modifiers{})
		case "esc":
			m.ctrl.HandleKey("Escape", app.Modifiers{})
		case "ctrl+r":
			m.ctrl.HandleKey("r", app.Modifiers{Ctrl: true})
		case "t":
			m.ctrl.ToggleMode()
		case "i":
			m.ctrl.ShowInfo()
		}
	}
	return m, nil
}

// move walks the cursor to the nearest tile in the given direction.
func (m *Model) move(dRow, dCol int) {
	cur := m.elements[m.cursor]
	row, col := m.position(m.cursor, cur)
	for step := 1; step <= 18; step++ {
		r, c := row+dRow*step, col+dCol*step
		if idx, ok := m.grid[[2]int{r, c}]; ok {
			m.cursor = idx
			return
		}
		if dRow != 0 {
			// search sideways on the target row for sparse rows
			for off := 1; off <= 18; off++ {
				for _, cc := range []int{col - off, col + off} {
					if idx, ok := m.grid[[2]int{r, cc}]; ok {
						m.cursor = idx
						return
					}
				}
			}
		}
	}
}

func (m Model) position(idx int, e domain.ElementEntry) (int, int) {
	if e.Row == 0 || e.Column == 0 {
		return idx/18 + 1, idx%18 + 1
	}
	return e.Row, e.Column
}

func (m Model) View() string {
	var b strings.Builder
	toggle, _ := m.state.Text(domain.SlotQuizToggle)
	reset, _ := m.state.Text(domain.SlotReset)
	b.WriteString(m.styles.title.Render("Periodic Table"))
	fmt.Fprintf(&b, "   [enter] %s   [ctrl+r] %s   [i] info   [q] quit\n\n", toggle, reset)

	for _, row := range m.rows {
		for col := 1; col <= 18; col++ {
			idx, ok := m.grid[[2]int{row, col}]
			if !ok {
				b.WriteString(m.styles.tile.Render(""))
				continue
			}
			b.WriteString(m.tileStyle(idx).Render(m.elements[idx].Symbol))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	panel := m.styles.panel
	switch m.state.Style(domain.SlotContainer) {
	case domain.StyleSuccessFlash:
		panel = panel.Inherit(m.styles.flash)
	case domain.StyleErrorShake:
		panel = panel.Inherit(m.styles.shake)
	}
	b.WriteString(panel.Render(m.panelText()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) tileStyle(idx int) lipgloss.Style {
	ref := m.elements[idx].Ref
	switch {
	case idx == m.cursor:
		return m.styles.cursor
	case m.state.HasMarker(ref, domain.MarkerIncorrect):
		return m.styles.incorrect
	case m.state.HasMarker(ref, domain.MarkerCorrect):
		return m.styles.correct
	case m.state.HasMarker(ref, domain.MarkerSelected):
		return m.styles.selected
	}
	return m.styles.tile
}

func (m Model) panelText() string {
	text := func(slot domain.Slot) string {
		v, _ := m.state.Text(slot)
		return v
	}
	if m.state.Visible(domain.SlotQuizPanel) {
		return fmt.Sprintf("Find: %s\nCorrect %s · Wrong %s · Streak %s",
			text(domain.SlotQuizTarget),
			text(domain.SlotCorrectCount), text(domain.SlotWrongCount), text(domain.SlotStreakCount))
	}
	return fmt.Sprintf("%s\nSymbol   %s\nNumber   %s\nMass     %s\nCategory %s",
		text(domain.SlotElementName),
		text(domain.SlotElementSymbol), text(domain.SlotElementNumber),
		text(domain.SlotElementMass), text(domain.SlotElementCategory))
}
