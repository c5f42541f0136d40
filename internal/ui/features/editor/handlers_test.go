package editor

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/internal/tableio"
	"github.com/leapstack-labs/qrsheet/internal/ui/features"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

// signals is a posted signals document.
type signals map[string]any

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	return NewHandlers(fixture.Registry), fixture
}

func tableMode(t *testing.T, h *Handlers, fixture *features.TestFixture) {
	t.Helper()
	rec := fixture.Do(h.SetMode, fixture.SignalsRequest("/editor/mode", signals{"mode": "table"}))
	require.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// Mode and text
// =============================================================================

func TestSetMode(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.SetMode, fixture.SignalsRequest("/editor/mode", signals{"mode": "table"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, 1, strings.Count(body, "event:"))
	assert.Contains(t, body, "Add Column")
	assert.Contains(t, body, "Column 2")
	assert.Equal(t, core.ModeTable, fixture.Entry().Widget.Snapshot().Mode)
}

func TestSetMode_Invalid(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.SetMode, fixture.SignalsRequest("/editor/mode", signals{"mode": "video"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, core.ModeText, fixture.Entry().Widget.Snapshot().Mode)
}

func TestSetMode_Missing(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.SetMode, fixture.SignalsRequest("/editor/mode", signals{"text": "x"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetMode_EmptyBody(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.SetMode, fixture.NewRequest(http.MethodPost, "/editor/mode", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetText(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.SetText, fixture.SignalsRequest("/editor/text", signals{"text": "https://example.com"}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", fixture.Entry().Widget.Snapshot().Text)
}

// =============================================================================
// Table editing
// =============================================================================

func TestAddRowAndColumn(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	tableMode(t, h, fixture)

	rec := fixture.Do(h.AddRow, fixture.SignalsRequest("/editor/rows", signals{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = fixture.Do(h.AddColumn, fixture.SignalsRequest("/editor/columns", signals{}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Column 3")

	tbl := fixture.Entry().Widget.Table()
	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, tbl.Columns)
	assert.Equal(t, [][]string{{"", "", ""}, {"", "", ""}}, tbl.Rows)
}

func TestUpdateColumnName(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	tableMode(t, h, fixture)

	req := features.RequestWithPathParams(
		fixture.SignalsRequest("/editor/columns/0", signals{"value": "Name"}),
		"col", "0",
	)
	rec := fixture.Do(h.UpdateColumnName, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Name"`)
	assert.Equal(t, []string{"Name", "Column 2"}, fixture.Entry().Widget.Table().Columns)
}

func TestUpdateCell(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	tableMode(t, h, fixture)

	req := features.RequestWithPathParams(
		fixture.SignalsRequest("/editor/cells/0/1", signals{"value": "<b>x</b>"}),
		"row", "0", "col", "1",
	)
	rec := fixture.Do(h.UpdateCell, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<b>x</b>", "cell values are escaped")
	assert.Equal(t, [][]string{{"", "<b>x</b>"}}, fixture.Entry().Widget.Table().Rows)
}

func TestUpdateCell_AppliesOtherCells(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	tableMode(t, h, fixture)

	req := features.RequestWithPathParams(
		fixture.SignalsRequest("/editor/cells/0/1", signals{
			"value": "b",
			"cells": map[string]string{
				common.HeaderSignal(0):  "Name",
				common.CellSignal(0, 0): "a",
				common.CellSignal(0, 1): "b",
				common.CellSignal(7, 0): "gone",
			},
		}),
		"row", "0", "col", "1",
	)
	rec := fixture.Do(h.UpdateCell, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	tbl := fixture.Entry().Widget.Table()
	assert.Equal(t, []string{"Name", "Column 2"}, tbl.Columns)
	assert.Equal(t, [][]string{{"a", "b"}}, tbl.Rows)
}

func TestUpdateCell_Errors(t *testing.T) {
	tests := []struct {
		name       string
		row, col   string
		wantStatus int
	}{
		{"out of range row", "5", "0", http.StatusNotFound},
		{"out of range column", "0", "9", http.StatusNotFound},
		{"negative index", "-1", "0", http.StatusBadRequest},
		{"not a number", "x", "0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			tableMode(t, h, fixture)

			req := features.RequestWithPathParams(
				fixture.SignalsRequest("/editor/cells", signals{"value": "v"}),
				"row", tt.row, "col", tt.col,
			)
			rec := fixture.Do(h.UpdateCell, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, [][]string{{"", ""}}, fixture.Entry().Widget.Table().Rows)
		})
	}
}

// =============================================================================
// Generate
// =============================================================================

func TestGenerate_Text(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Do(h.SetText, fixture.SignalsRequest("/editor/text", signals{"text": "hello"}))

	rec := fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{}))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "/qr/image.png")
	assert.Contains(t, body, "Download QR Code")
	assert.Equal(t, "hello", fixture.Entry().Widget.Snapshot().Payload)
}

func TestGenerate_UsesPostedText(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{"text": "hello"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	s := fixture.Entry().Widget.Snapshot()
	assert.Equal(t, "hello", s.Payload)
	assert.True(t, s.HasQR)
}

func TestGenerate_UsesPostedCells(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{
		"mode":  "table",
		"cells": map[string]string{
			common.HeaderSignal(1):  "Qty",
			common.CellSignal(0, 1): "3",
		},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"columns":["Column 1","Qty"],"rows":[["","3"]]}`, fixture.Entry().Widget.Snapshot().Payload)
}

func TestGenerate_InvalidSignals(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.Generate, fixture.NewRequest(http.MethodPost, "/editor/generate", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, fixture.Entry().Widget.Snapshot().HasQR)
}

func TestGenerate_TableIsIdempotent(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	tableMode(t, h, fixture)

	fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{}))
	first := fixture.Entry().Widget.Snapshot().Payload
	fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{}))

	assert.Equal(t, `{"columns":["Column 1","Column 2"],"rows":[["",""]]}`, first)
	assert.Equal(t, first, fixture.Entry().Widget.Snapshot().Payload)
}

func TestGenerate_EmptyTextShowsNoCode(t *testing.T) {
	h, fixture := setupTestHandlers(t)

	rec := fixture.Do(h.Generate, fixture.SignalsRequest("/editor/generate", signals{}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<img")
	assert.False(t, fixture.Entry().Widget.Snapshot().HasQR)
}

// =============================================================================
// Export
// =============================================================================

func TestExportCSV(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Entry().Widget.LoadTable(core.Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"1", "2"}},
	})

	rec := fixture.Do(h.ExportCSV, fixture.NewRequest(http.MethodGet, "/editor/export.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="table.csv"`)
	assert.Equal(t, "A,B\n1,2\n", rec.Body.String())
}

func TestExportXLSX(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	in := core.Table{Columns: []string{"A"}, Rows: [][]string{{"x"}}}
	fixture.Entry().Widget.LoadTable(in)

	rec := fixture.Do(h.ExportXLSX, fixture.NewRequest(http.MethodGet, "/editor/export.xlsx", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
	out, err := tableio.ReadXLSX(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
