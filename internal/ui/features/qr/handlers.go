package qr

import (
	"net/http"

	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// DownloadContentType is sent with the download so browsers save the file
// instead of displaying it.
const DownloadContentType = "application/octet-stream"

// Handlers provides HTTP handlers for the qr feature.
type Handlers struct {
	registry *session.Registry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry) *Handlers {
	return &Handlers{registry: registry}
}

// Download sends the rendered code as qrcode.png. Without a rendered code
// it is a no-op (204).
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	data, ok := entry.Widget.Download()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	common.WriteAttachment(w, DownloadContentType, core.DownloadFilename, data)
}

// Image serves the rendered code for display.
func (h *Handlers) Image(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	data, ok := entry.Widget.Download()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}
