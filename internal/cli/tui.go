package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/depcollect/pkg/collect"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// =============================================================================
// browserModel - Interactive result browser
// =============================================================================

// browserModel is the bubbletea model behind collect --interactive. It lists
// the resolved dependencies (or the omitted conflicts) and shows the path
// from the root to the selected entry.
type browserModel struct {
	res       *collect.Result
	cursor    int
	offset    int
	height    int
	conflicts bool
	detail    bool
}

func newBrowserModel(res *collect.Result) browserModel {
	return browserModel{res: res, height: 15}
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) rows() int {
	if m.conflicts {
		return len(m.res.Conflicts)
	}
	return len(m.res.Dependencies)
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.detail {
				return m, tea.Quit
			}
			m.detail = false
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < m.rows()-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.rows() > 0 {
				m.detail = !m.detail
			}
		case "tab", "c":
			m.conflicts = !m.conflicts
			m.cursor, m.offset, m.detail = 0, 0, false
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browserModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Dependencies of %s", m.res.Root)
	if m.conflicts {
		title = fmt.Sprintf("Conflicts in %s", m.res.Root)
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ path  tab conflicts  q quit"))
	b.WriteString("\n\n")

	if m.rows() == 0 {
		b.WriteString(listDimStyle.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}

	if m.conflicts {
		b.WriteString(m.conflictTable())
	} else {
		b.WriteString(m.dependencyTable())
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, m.rows())))

	if m.detail {
		b.WriteString("\n\n")
		b.WriteString(m.pathView())
	}
	return b.String()
}

func (m browserModel) window() (int, int) {
	end := m.offset + m.height
	if end > m.rows() {
		end = m.rows()
	}
	return m.offset, end
}

func (m browserModel) dependencyTable() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		d := m.res.Dependencies[i]
		optional := ""
		if d.Optional {
			optional = "✓"
		}
		rows = append(rows, []string{m.marker(i), d.Coordinate.String(), d.Scope.String(), strconv.Itoa(d.Depth), optional})
	}
	return m.render([]string{"", "Coordinate", "Scope", "Depth", "Optional"}, rows)
}

func (m browserModel) conflictTable() string {
	start, end := m.window()
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		c := m.res.Conflicts[i]
		rows = append(rows, []string{m.marker(i), c.Key.String(), c.Winner.Version, c.Loser.Version, c.Kind.String()})
	}
	return m.render([]string{"", "Artifact", "Kept", "Omitted", "Kind"}, rows)
}

func (m browserModel) marker(i int) string {
	if i == m.cursor {
		return "▸ "
	}
	return "  "
}

func (m browserModel) render(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case m.offset+row == m.cursor:
				return listSelectedStyle
			case col >= 2:
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

// pathView shows the chain of artifacts from the root to the selection.
func (m browserModel) pathView() string {
	var path []string
	if m.conflicts {
		c := m.res.Conflicts[m.cursor]
		for _, p := range c.Path {
			path = append(path, p.String())
		}
		path = append(path, c.Loser.String()+" (omitted for "+c.Winner.Version+")")
	} else {
		path = m.pathTo(m.res.Dependencies[m.cursor].Coordinate.String())
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render("Path"))
	b.WriteString("\n")
	for i, p := range path {
		b.WriteString(strings.Repeat("  ", i+1))
		if i > 0 {
			b.WriteString(StyleDim.Render(iconArrow + " "))
		}
		b.WriteString(StyleValue.Render(p))
		b.WriteString("\n")
	}
	return b.String()
}

// pathTo walks parent edges of the resolved tree back to the root.
func (m browserModel) pathTo(id string) []string {
	g := m.res.Graph
	path := []string{id}
	for seen := map[string]bool{id: true}; ; {
		parents := g.Parents(path[0])
		if len(parents) == 0 || seen[parents[0]] {
			return path
		}
		seen[parents[0]] = true
		path = append([]string{parents[0]}, path...)
	}
}
