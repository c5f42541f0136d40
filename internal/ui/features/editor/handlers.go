package editor

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/qrsheet/internal/tableio"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common/components"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/core"
	content "github.com/leapstack-labs/qrsheet/pkg/editor"
)

// Handlers provides HTTP handlers for the editor feature.
type Handlers struct {
	registry *session.Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry) *Handlers {
	return &Handlers{registry: registry}
}

// patchEditor re-renders the editor section.
func patchEditor(w http.ResponseWriter, r *http.Request, wg *widget.Widget) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.Editor(wg.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// update applies the request's editor signals and then fn to the widget
// content as one batch. On failure it writes the error response and returns false.
func (h *Handlers) update(w http.ResponseWriter, r *http.Request, fn func(*content.Editor, common.EditorSignals) error) (*session.Entry, bool) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return nil, false
	}

	var signals common.EditorSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	err := entry.Widget.Edit(func(e *content.Editor) error {
		if err := applySignals(e, signals); err != nil {
			return err
		}
		if fn == nil {
			return nil
		}
		return fn(e, signals)
	})
	if err != nil {
		writeEditError(w, err)
		return nil, false
	}
	return entry, true
}

// applySignals copies the client-side content into e. Cells outside the
// grid are skipped.
func applySignals(e *content.Editor, s common.EditorSignals) error {
	if s.Mode != nil {
		mode, err := core.ParseMode(*s.Mode)
		if err != nil {
			return err
		}
		e.SetMode(mode)
	}
	if s.Text != nil {
		e.SetText(*s.Text)
	}
	for key, value := range s.Cells {
		row, col, header, ok := common.ParseCellSignal(key)
		if !ok {
			continue
		}
		var err error
		if header {
			err = e.UpdateColumnName(col, value)
		} else {
			err = e.UpdateCell(row, col, value)
		}
		if err != nil && !errors.Is(err, core.ErrOutOfRange) {
			return err
		}
	}
	return nil
}

// SetMode switches between text and table content.
func (h *Handlers) SetMode(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.update(w, r, func(_ *content.Editor, s common.EditorSignals) error {
		if s.Mode == nil {
			return errMissingMode
		}
		return nil
	})
	if !ok {
		return
	}
	patchEditor(w, r, entry.Widget)
}

// SetText stores the text content. The text area is bound to the signal,
// so nothing is patched back.
func (h *Handlers) SetText(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.update(w, r, nil); !ok {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddRow appends an empty row.
func (h *Handlers) AddRow(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.update(w, r, func(e *content.Editor, _ common.EditorSignals) error {
		e.AddRow()
		return nil
	})
	if !ok {
		return
	}
	patchEditor(w, r, entry.Widget)
}

// AddColumn appends a default-named column.
func (h *Handlers) AddColumn(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.update(w, r, func(e *content.Editor, _ common.EditorSignals) error {
		e.AddColumn()
		return nil
	})
	if !ok {
		return
	}
	patchEditor(w, r, entry.Widget)
}

// UpdateColumnName renames the column in the {col} path parameter.
func (h *Handlers) UpdateColumnName(w http.ResponseWriter, r *http.Request) {
	col, ok := common.ParseIndex(chi.URLParam(r, "col"))
	if !ok {
		http.Error(w, "invalid column index", http.StatusBadRequest)
		return
	}

	entry, ok := h.update(w, r, func(e *content.Editor, s common.EditorSignals) error {
		return e.UpdateColumnName(col, s.Value)
	})
	if !ok {
		return
	}
	patchEditor(w, r, entry.Widget)
}

// UpdateCell replaces the cell at the {row}/{col} path parameters.
func (h *Handlers) UpdateCell(w http.ResponseWriter, r *http.Request) {
	row, rowOK := common.ParseIndex(chi.URLParam(r, "row"))
	col, colOK := common.ParseIndex(chi.URLParam(r, "col"))
	if !rowOK || !colOK {
		http.Error(w, "invalid cell index", http.StatusBadRequest)
		return
	}

	entry, ok := h.update(w, r, func(e *content.Editor, s common.EditorSignals) error {
		return e.UpdateCell(row, col, s.Value)
	})
	if !ok {
		return
	}
	patchEditor(w, r, entry.Widget)
}

func writeEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrOutOfRange) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// Generate applies the posted editor content, renders it as a QR code and
// patches the QR panel. A failed render patches an empty panel.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.update(w, r, nil)
	if !ok {
		return
	}

	_, err := entry.Widget.Generate(r.Context())

	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ConsoleError(err)
	}
	if err := sse.PatchElementTempl(components.QRPanel(entry.Widget.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ExportCSV downloads the table content as CSV.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := tableio.WriteCSV(r.Context(), &buf, entry.Widget.Table()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	common.WriteAttachment(w, "text/csv; charset=utf-8", csvFilename, buf.Bytes())
}

// ExportXLSX downloads the table content as a workbook.
func (h *Handlers) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := tableio.WriteXLSX(&buf, entry.Widget.Table()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	common.WriteAttachment(w, xlsxMIME, xlsxFilename, buf.Bytes())
}
