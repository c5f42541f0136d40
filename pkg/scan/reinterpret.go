package scan

import (
	"encoding/json"
	"fmt"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// Reinterpret decodes a payload as a {columns, rows} table.
//
// The payload must be a JSON object with both keys present and non-null,
// "columns" an array of strings and "rows" an array of arrays of strings.
// Keys match exactly and extra keys are ignored. Row lengths are not checked
// against the column count: a ragged table is returned as-is and renders
// with holes. Every failure wraps core.ErrNotTabular.
func Reinterpret(payload string) (core.Table, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return core.Table{}, fmt.Errorf("%w: %w", core.ErrNotTabular, err)
	}

	colsRaw, err := requireField(fields, "columns")
	if err != nil {
		return core.Table{}, err
	}
	rowsRaw, err := requireField(fields, "rows")
	if err != nil {
		return core.Table{}, err
	}

	var t core.Table
	if err := json.Unmarshal(colsRaw, &t.Columns); err != nil {
		return core.Table{}, fmt.Errorf("%w: columns: %w", core.ErrNotTabular, err)
	}
	if err := json.Unmarshal(rowsRaw, &t.Rows); err != nil {
		return core.Table{}, fmt.Errorf("%w: rows: %w", core.ErrNotTabular, err)
	}
	return t, nil
}

func requireField(fields map[string]json.RawMessage, key string) (json.RawMessage, error) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing %q", core.ErrNotTabular, key)
	}
	return raw, nil
}

// View is the render model of a scan result: the raw text and, when the
// text reinterprets as a table, that table.
type View struct {
	Visible bool
	Raw     string
	Table   *core.Table
}

// NewView builds the view of a result. An empty result is not visible.
func NewView(result string) View {
	v := View{Visible: result != "", Raw: result}
	if !v.Visible {
		return v
	}
	if t, err := Reinterpret(result); err == nil {
		v.Table = &t
	}
	return v
}
