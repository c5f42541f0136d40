package core

import (
	"fmt"
	"slices"
	"strconv"
)

// DefaultColumnName returns the header given to the column at the 1-based position n.
func DefaultColumnName(n int) string {
	return "Column " + strconv.Itoa(n)
}

// Table is the tabular content of the editor and the shape recognized
// when a scanned payload is reinterpreted.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// NewTable returns the initial table: two default headers and one empty row.
func NewTable() Table {
	return Table{
		Columns: []string{DefaultColumnName(1), DefaultColumnName(2)},
		Rows:    [][]string{{"", ""}},
	}
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	c := Table{Columns: slices.Clone(t.Columns)}
	if t.Rows != nil {
		c.Rows = make([][]string, len(t.Rows))
		for i, row := range t.Rows {
			c.Rows[i] = slices.Clone(row)
		}
	}
	return c
}

// Validate reports the first row whose length differs from the column count.
func (t Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(t.Columns), ErrRaggedTable)
		}
	}
	return nil
}

// Cell returns the value at row, col or "" when the cell does not exist.
// Reinterpreted tables may be ragged, so holes are expected.
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
