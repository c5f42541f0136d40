// Package editor holds the content editor: a text buffer and a table grid,
// one of which is active and serialized into a QR payload on Generate.
package editor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// Editor maintains the text and table content. Both persist across mode
// switches so the user can toggle without losing data.
//
// Editor is not safe for concurrent use; callers that share one must
// serialize access.
type Editor struct {
	mode  core.Mode
	text  string
	table core.Table
}

// New creates an editor in text mode with an empty text and the default table.
func New() *Editor {
	return &Editor{
		mode:  core.ModeText,
		table: core.NewTable(),
	}
}

// Mode returns the active mode.
func (e *Editor) Mode() core.Mode { return e.mode }

// Text returns the text content.
func (e *Editor) Text() string { return e.text }

// SetMode switches the active content type. The inactive content is kept.
func (e *Editor) SetMode(m core.Mode) { e.mode = m }

// SetText replaces the text content.
func (e *Editor) SetText(s string) { e.text = s }

// Table returns a deep copy of the table content.
func (e *Editor) Table() core.Table { return e.table.Clone() }

// AddRow appends a row of empty cells sized to the current column count.
func (e *Editor) AddRow() {
	e.table.Rows = append(e.table.Rows, make([]string, len(e.table.Columns)))
}

// AddColumn appends a header named after its 1-based position and extends
// every existing row with one empty cell.
func (e *Editor) AddColumn() {
	// Build the new rows first so a column never exists without its cells.
	rows := make([][]string, len(e.table.Rows))
	for i, row := range e.table.Rows {
		rows[i] = append(row, "")
	}
	e.table.Columns = append(e.table.Columns, core.DefaultColumnName(len(e.table.Columns)+1))
	e.table.Rows = rows
}

// UpdateColumnName replaces the header at index.
func (e *Editor) UpdateColumnName(index int, value string) error {
	if index < 0 || index >= len(e.table.Columns) {
		return fmt.Errorf("column %d of %d: %w", index, len(e.table.Columns), core.ErrOutOfRange)
	}
	e.table.Columns[index] = value
	return nil
}

// UpdateCell replaces one cell.
func (e *Editor) UpdateCell(rowIndex, colIndex int, value string) error {
	if rowIndex < 0 || rowIndex >= len(e.table.Rows) {
		return fmt.Errorf("row %d of %d: %w", rowIndex, len(e.table.Rows), core.ErrOutOfRange)
	}
	row := e.table.Rows[rowIndex]
	if colIndex < 0 || colIndex >= len(row) {
		return fmt.Errorf("column %d of %d: %w", colIndex, len(row), core.ErrOutOfRange)
	}
	row[colIndex] = value
	return nil
}

// LoadTable replaces the table content. Ragged input is padded with empty
// cells (and default headers) to the widest row so the row length invariant holds.
// A table without headers gets at least the default table's columns, so the
// payload always carries a columns array.
func (e *Editor) LoadTable(t core.Table) {
	t = t.Clone()
	width := len(t.Columns)
	if width == 0 {
		width = len(core.NewTable().Columns)
	}
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	for len(t.Columns) < width {
		t.Columns = append(t.Columns, core.DefaultColumnName(len(t.Columns)+1))
	}
	for i, row := range t.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		t.Rows[i] = row
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	e.table = t
}

// Generate computes the payload for the active mode.
// Text mode returns the text verbatim, empty included. Table mode returns
// exactly {"columns":[...],"rows":[[...]]} with no HTML escaping, so the
// payload matches what a plain JSON.stringify of the same table would give.
func (e *Editor) Generate() (string, error) {
	if e.mode == core.ModeText {
		return e.text, nil
	}
	return MarshalTable(e.table)
}

// MarshalTable serializes a table as the {columns, rows} payload.
func MarshalTable(t core.Table) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return "", fmt.Errorf("encode table: %w", err)
	}
	// Encoder terminates each value with a newline
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
