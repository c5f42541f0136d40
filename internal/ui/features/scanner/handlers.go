package scanner

import (
	"errors"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/qrsheet/internal/ui/features/common"
	"github.com/leapstack-labs/qrsheet/internal/ui/features/common/components"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
	"github.com/leapstack-labs/qrsheet/internal/widget"
)

// Handlers provides HTTP handlers for the scanner feature.
type Handlers struct {
	registry       *session.Registry
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(registry *session.Registry, maxUploadBytes int64, logger *slog.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		registry:       registry,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func patchScanner(w http.ResponseWriter, r *http.Request, wg *widget.Widget) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.Scanner(wg.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Start mounts the camera view.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}
	entry.Widget.StartScanning()
	patchScanner(w, r, entry.Widget)
}

// Stop unmounts the camera view.
func (h *Handlers) Stop(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}
	entry.Widget.StopScanning()
	patchScanner(w, r, entry.Widget)
}

// PushFrame queues one camera frame for decoding. The outcome reaches the
// page through the /updates stream, so the response carries no body:
// 202 queued, 409 no camera session, 429 queue full, 400 not an image.
func (h *Handlers) PushFrame(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	file, err := h.formFile(w, r, frameField)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		h.logger.Debug("dropping undecodable frame", "error", err)
		http.Error(w, "frame is not an image", http.StatusBadRequest)
		return
	}

	switch {
	case entry.Widget.PushFrame(img):
		w.WriteHeader(http.StatusAccepted)
	case !entry.Widget.Snapshot().Scanning:
		w.WriteHeader(http.StatusConflict)
	default:
		w.WriteHeader(http.StatusTooManyRequests)
	}
}

// Upload decodes an uploaded image and patches the result. An image without
// a readable code shows the no-code sentinel.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	entry, ok := common.LoadEntry(w, r, h.registry)
	if !ok {
		return
	}

	file, err := h.formFile(w, r, uploadField)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	entry.Widget.ScanUpload(r.Context(), file)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.Result(entry.Widget.Snapshot())); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) formFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("upload too large")
		}
		return nil, err
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	return file, nil
}
