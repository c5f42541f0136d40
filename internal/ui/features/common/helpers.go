package common

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// ColumnPath returns the endpoint renaming column col.
func ColumnPath(col int) string {
	return "/editor/columns/" + strconv.Itoa(col)
}

// CellPath returns the endpoint updating the cell at row, col.
func CellPath(row, col int) string {
	return "/editor/cells/" + strconv.Itoa(row) + "/" + strconv.Itoa(col)
}

// HeaderSignal returns the Cells key of the header of column col.
func HeaderSignal(col int) string {
	return "h" + strconv.Itoa(col)
}

// CellSignal returns the Cells key of the cell at row, col.
func CellSignal(row, col int) string {
	return "r" + strconv.Itoa(row) + "c" + strconv.Itoa(col)
}

// ParseCellSignal is the inverse of HeaderSignal and CellSignal.
func ParseCellSignal(key string) (row, col int, header, ok bool) {
	if rest, found := strings.CutPrefix(key, "h"); found {
		col, ok = ParseIndex(rest)
		return 0, col, true, ok
	}
	rest, found := strings.CutPrefix(key, "r")
	if !found {
		return 0, 0, false, false
	}
	rs, cs, found := strings.Cut(rest, "c")
	if !found {
		return 0, 0, false, false
	}
	row, rowOK := ParseIndex(rs)
	col, colOK := ParseIndex(cs)
	return row, col, false, rowOK && colOK
}

// ModeLabel returns a human-readable label for a content mode.
func ModeLabel(m core.Mode) string {
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(m.String())
}

// ParseIndex parses a non-negative path index.
func ParseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// LoadEntry resolves the widget of the request's browser session. On
// failure it writes a 500 and returns false.
func LoadEntry(w http.ResponseWriter, r *http.Request, reg *session.Registry) (*session.Entry, bool) {
	e, err := reg.Lookup(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return e, true
}

// WriteAttachment sends data as a file download.
func WriteAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
