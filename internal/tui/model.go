// Package tui is a terminal front end for the QR widget: a text or table
// editor whose generated code is drawn with half-block characters.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// TerminalRenderer draws a payload as terminal text.
type TerminalRenderer interface {
	Terminal(payload string) (string, error)
}

// headerRow is the cursor row of the column headers.
const headerRow = -1

// Model is the bubbletea model of the terminal editor.
type Model struct {
	widget    *widget.Widget
	renderer  TerminalRenderer
	outputDir string

	// table cursor; cy == headerRow selects the headers
	cx, cy int

	editing bool
	input   textinput.Model

	qrArt   string
	payload string
	status  string
	err     error
}

// New creates the model. Generated codes are saved to outputDir.
func New(w *widget.Widget, renderer TerminalRenderer, outputDir string) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 0
	return Model{
		widget:    w,
		renderer:  renderer,
		outputDir: outputDir,
		input:     input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.editing {
		return m.updateEdit(key)
	}
	return m.updateNormal(key)
}

func (m Model) updateNormal(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	s := m.widget.Snapshot()

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if s.Mode == core.ModeText {
			m.widget.SetMode(core.ModeTable)
		} else {
			m.widget.SetMode(core.ModeText)
		}
		m.status = ""
	case "g":
		m.generate()
	case "ctrl+s":
		m.save()
	case "enter":
		return m.startEdit(s)
	}

	if s.Mode == core.ModeTable {
		m.updateTableKeys(key, s.Table)
	}
	return m, nil
}

func (m *Model) updateTableKeys(key tea.KeyMsg, t core.Table) {
	switch key.String() {
	case "left", "h":
		if m.cx > 0 {
			m.cx--
		}
	case "right", "l":
		if m.cx < len(t.Columns)-1 {
			m.cx++
		}
	case "up", "k":
		if m.cy > headerRow {
			m.cy--
		}
	case "down", "j":
		if m.cy < len(t.Rows)-1 {
			m.cy++
		}
	case "a":
		m.widget.AddRow()
		m.cy = len(t.Rows)
	case "A":
		m.widget.AddColumn()
		m.cx = len(t.Columns)
	}
}

func (m Model) startEdit(s widget.State) (tea.Model, tea.Cmd) {
	switch {
	case s.Mode == core.ModeText:
		m.input.SetValue(s.Text)
	case m.cy == headerRow:
		if m.cx >= len(s.Table.Columns) {
			return m, nil
		}
		m.input.SetValue(s.Table.Columns[m.cx])
	default:
		m.input.SetValue(s.Table.Cell(m.cy, m.cx))
	}
	m.input.CursorEnd()
	m.editing = true
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateEdit(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.stopEdit()
		return m, nil
	case "enter":
		m.commit(m.input.Value())
		m.stopEdit()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *Model) stopEdit() {
	m.editing = false
	m.input.Blur()
}

func (m *Model) commit(value string) {
	if m.widget.Snapshot().Mode == core.ModeText {
		m.widget.SetText(value)
		return
	}
	if m.cy == headerRow {
		m.err = m.widget.UpdateColumnName(m.cx, value)
		return
	}
	m.err = m.widget.UpdateCell(m.cy, m.cx, value)
}

func (m *Model) generate() {
	payload, err := m.widget.Generate(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.payload = payload
	m.qrArt = ""
	if payload == "" {
		m.status = "nothing to encode"
		return
	}
	art, err := m.renderer.Terminal(payload)
	if err != nil {
		m.err = err
		return
	}
	m.qrArt = art
	m.status = fmt.Sprintf("encoded %d bytes", len(payload))
}

func (m *Model) save() {
	data, ok := m.widget.Download()
	if !ok {
		m.status = "generate a QR code first"
		return
	}
	path := filepath.Join(m.outputDir, core.DownloadFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // a PNG meant to be shared
		m.err = fmt.Errorf("save %s: %w", path, err)
		return
	}
	m.status = "saved " + path
}
