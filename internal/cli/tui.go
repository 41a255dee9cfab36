package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/svglayers/pkg/render/outline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// styleWidth bounds the style column in the sub-group list.
const styleWidth = 60

// =============================================================================
// LayerListModel - Interactive layer browser
// =============================================================================

// LayerListModel is the bubbletea model for browsing the layers of a
// processed document. Enter toggles the sub-group list of the layer under
// the cursor.
type LayerListModel struct {
	Title    string
	Layers   []outline.Layer
	Cursor   int
	Height   int
	Offset   int
	Expanded bool
}

// NewLayerListModel creates a new layer list model.
func NewLayerListModel(title string, layers []outline.Layer) LayerListModel {
	return LayerListModel{
		Title:  title,
		Layers: layers,
		Height: 15,
	}
}

func (m LayerListModel) Init() tea.Cmd {
	return nil
}

func (m LayerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ sub-groups  q quit"))
	b.WriteString("\n\n")

	if len(m.Layers) == 0 {
		b.WriteString(listDimStyle.Render("  no layers"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Layers))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.Layers[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, l.Label, strconv.Itoa(l.Elements), strconv.Itoa(len(l.Subgroups))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Layer", "Elements", "Groups").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Layers) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorCyan)
			}
			if idx == m.Cursor {
				if col < 2 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			if len(m.Layers[idx].Subgroups) == 0 && col < 2 {
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Layers))))
	b.WriteString("\n")

	if m.Expanded {
		b.WriteString("\n")
		b.WriteString(m.subgroupView(m.Layers[m.Cursor]))
	}
	return b.String()
}

// subgroupView lists the style groups of one layer.
func (m LayerListModel) subgroupView(l outline.Layer) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(l.Label))
	b.WriteString("\n")
	if len(l.Subgroups) == 0 {
		b.WriteString(listDimStyle.Render("  no sub-groups"))
		b.WriteString("\n")
		return b.String()
	}
	for _, sg := range l.Subgroups {
		line := fmt.Sprintf("  %-16s %4d  ", sg.Label, sg.Members)
		b.WriteString(listNormalStyle.Render(line))
		b.WriteString(listDimStyle.Render(truncate(sg.Style, styleWidth)))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func truncate(s string, n int) string {
	if s == "" {
		return "—"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
