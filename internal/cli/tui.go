package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tilebound/tileview/pkg/archive"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// metadataModel is the bubbletea model for browsing an archive's
// metadata document key by key.
type metadataModel struct {
	title  string
	keys   []string
	values map[string]string
	cursor int
	height int
	offset int
}

// newMetadataModel flattens a metadata document into sorted key/value
// rows.
func newMetadataModel(title string, meta archive.Metadata) metadataModel {
	keys := make([]string, 0, len(meta))
	values := make(map[string]string, len(meta))
	for k, v := range meta {
		keys = append(keys, k)
		values[k] = formatMetadataValue(v)
	}
	sort.Strings(keys)

	return metadataModel{
		title:  title,
		keys:   keys,
		values: values,
		height: 15,
	}
}

// formatMetadataValue renders a JSON value on one line, truncated so
// array-valued keys (vector layer definitions mostly) stay readable.
func formatMetadataValue(v any) string {
	var s string
	switch v := v.(type) {
	case string:
		s = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprintf("%v", v)
		} else {
			s = string(b)
		}
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}

func (m metadataModel) Init() tea.Cmd {
	return nil
}

func (m metadataModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.keys)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m metadataModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Archive Metadata"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.keys) {
		end = len(m.keys)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, m.keys[i], m.values[m.keys[i]]})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Key", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.keys))))

	return b.String()
}
