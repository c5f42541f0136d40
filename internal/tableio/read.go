// Package tableio converts {columns, rows} tables to and from file formats.
package tableio

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/domonda/go-retable/csvtable"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// Format is a supported table file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported table format %q (expected .csv, .yaml or .xlsx)", filepath.Ext(path))
	}
}

// Read parses data in the given format.
func Read(format Format, data []byte) (core.Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(data)
	case FormatYAML:
		return ReadYAML(data)
	case FormatXLSX:
		return ReadXLSX(data)
	default:
		return core.Table{}, fmt.Errorf("unsupported table format %q", format)
	}
}

// ReadCSV parses CSV with separator and encoding detection.
// The first row becomes the column headers.
func ReadCSV(data []byte) (core.Table, error) {
	rows, _, err := csvtable.ParseDetectFormat(data, nil)
	if err != nil {
		return core.Table{}, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(rows), nil
}

// ReadYAML parses a document with top-level columns and rows keys.
func ReadYAML(data []byte) (core.Table, error) {
	var t core.Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return core.Table{}, fmt.Errorf("parse yaml: %w", err)
	}
	if t.Columns == nil {
		t.Columns = []string{}
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	return t, nil
}

// ReadXLSX reads the first sheet of a workbook.
// The first row becomes the column headers.
func ReadXLSX(data []byte) (core.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return core.Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return core.Table{}, fmt.Errorf("read xlsx rows: %w", err)
	}
	return fromRows(rows), nil
}

// fromRows splits off the header row. Trailing blank lines are dropped.
func fromRows(rows [][]string) core.Table {
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return core.Table{Columns: []string{}, Rows: [][]string{}}
	}
	body := rows[1:]
	if body == nil {
		body = [][]string{}
	}
	return core.Table{Columns: rows[0], Rows: body}
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
