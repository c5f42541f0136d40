package tableio

import (
	"context"
	"fmt"
	"io"

	"github.com/domonda/go-retable"
	"github.com/domonda/go-retable/csvtable"
	"github.com/domonda/go-retable/htmltable"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// HTMLTableClass is the class of tables written by WriteHTML.
const HTMLTableClass = "scan-table"

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Sheet1"

// View adapts a table to a retable view. The view is as wide as the widest
// row; headers past the end of t.Columns are blank. Rows shorter than the
// view keep their holes.
func View(t core.Table) retable.View {
	return &retable.StringsView{Cols: headers(t), Rows: t.Rows}
}

// headers pads t.Columns with blank names up to the widest row.
func headers(t core.Table) []string {
	width := len(t.Columns)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	if width == len(t.Columns) {
		return t.Columns
	}
	cols := make([]string, width)
	copy(cols, t.Columns)
	return cols
}

// WriteCSV writes the table as CSV with a header row.
func WriteCSV(ctx context.Context, w io.Writer, t core.Table) error {
	err := csvtable.NewWriter[[][]string]().
		WithHeaderRow(true).
		WithDelimiter(',').
		WithNewLine("\n").
		WriteView(ctx, w, View(t))
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteHTML writes the table as an HTML <table>, escaping every cell.
func WriteHTML(ctx context.Context, w io.Writer, t core.Table) error {
	err := htmltable.NewWriter[[][]string]().
		WithHeaderRow(true).
		WithTableClass(HTMLTableClass).
		WriteView(ctx, w, View(t))
	if err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// WriteText renders the table for a terminal.
func WriteText(w io.Writer, t core.Table) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	cols := headers(t)
	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	tw.AppendHeader(header)

	for r := range t.Rows {
		row := make(table.Row, len(cols))
		for c := range cols {
			row[c] = t.Cell(r, c)
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

// WriteXLSX writes the table to a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t core.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := setRow(f, 1, t.Columns); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	values := make([]any, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	return nil
}
