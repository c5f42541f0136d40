// Package common provides shared types and utilities for UI features.
package common

// Element ids of the widget sections. SSE patches morph by id.
const (
	SectionEditor  = "editor"
	SectionQR      = "qr"
	SectionScanner = "scanner"
	SectionResult  = "result"
)

// EditorSignals is the client-side copy of the editor content. The editor
// section seeds it and every editor request posts it back. Absent fields
// leave the server content untouched.
type EditorSignals struct {
	Mode *string `json:"mode,omitempty"`
	Text *string `json:"text,omitempty"`
	// Cells is keyed by HeaderSignal and CellSignal.
	Cells map[string]string `json:"cells,omitempty"`
	// Value is the header or cell committed by a change event.
	Value string `json:"value"`
}
