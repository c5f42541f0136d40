// Package components renders the widget sections as templ components.
package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/qrsheet/internal/tableio"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// DatastarScript is the datastar client bundle.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// CameraSize is the edge length of the live camera view in pixels.
const CameraSize = 300

// modes are offered by the mode selector in this order.
var modes = []core.Mode{core.ModeText, core.ModeTable}

// post returns a datastar action posting to path.
func post(path string) string {
	return "@post('" + path + "')"
}

// editorSignals seeds the client-side copy of the editor content.
func editorSignals(s widget.State) common.EditorSignals {
	mode, text := s.Mode.String(), s.Text
	cells := make(map[string]string, len(s.Table.Columns)*(len(s.Table.Rows)+1))
	for c, name := range s.Table.Columns {
		cells[common.HeaderSignal(c)] = name
	}
	for r := range s.Table.Rows {
		for c := range s.Table.Columns {
			cells[common.CellSignal(r, c)] = s.Table.Cell(r, c)
		}
	}
	return common.EditorSignals{Mode: &mode, Text: &text, Cells: cells}
}

func qrImageURL(version int64) string {
	return "/qr/image.png?v=" + strconv.FormatInt(version, 10)
}

// resultTable renders a scanned table. tableio escapes every cell.
func resultTable(t core.Table) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tableio.WriteHTML(ctx, w, t)
	})
}
