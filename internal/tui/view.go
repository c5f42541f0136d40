package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const maxCellWidth = 20

// View implements tea.Model.
func (m Model) View() string {
	s := m.widget.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("QR Code · " + s.Mode.String()))
	b.WriteString("\n\n")

	if s.Mode == core.ModeText {
		text := s.Text
		if text == "" {
			text = dimStyle.Render("(empty; enter to edit)")
		}
		b.WriteString(text)
	} else {
		b.WriteString(m.viewTable(s.Table))
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString("\n" + m.input.View() + "\n")
	}

	if m.qrArt != "" {
		b.WriteString("\n" + m.qrArt)
		b.WriteString(dimStyle.Render(m.payload) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render(m.help(s.Mode)))
	return b.String()
}

func (m Model) viewTable(t core.Table) string {
	rows := make([]string, 0, len(t.Rows)+1)

	header := make([]string, len(t.Columns))
	for c, name := range t.Columns {
		header[c] = m.cell(name, headerRow, c, headerStyle)
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for r := range t.Rows {
		cells := make([]string, len(t.Columns))
		for c := range t.Columns {
			cells[c] = m.cell(t.Cell(r, c), r, c, lipgloss.NewStyle())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) cell(value string, row, col int, base lipgloss.Style) string {
	if runes := []rune(value); len(runes) > maxCellWidth {
		value = string(runes[:maxCellWidth-1]) + "…"
	}
	style := cellStyle.Inherit(base).Width(maxCellWidth + 2)
	if row == m.cy && col == m.cx {
		style = style.Inherit(cursorStyle)
	}
	return style.Render(value)
}

func (m Model) help(mode core.Mode) string {
	if m.editing {
		return "enter save · esc cancel"
	}
	if mode == core.ModeTable {
		return "tab mode · ←↓↑→ move · enter edit · a add row · A add column · g generate · ctrl+s save · q quit"
	}
	return "tab mode · enter edit · g generate · ctrl+s save · q quit"
}
