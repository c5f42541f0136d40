// Package widget is the view-model of the QR widget. It composes the content
// editor, the scan interpreter, the last rendered QR surface and the live
// camera session, and is shared by every view layer (web, terminal, CLI).
package widget

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/qrsheet/pkg/core"
	"github.com/leapstack-labs/qrsheet/pkg/editor"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
	"github.com/leapstack-labs/qrsheet/pkg/scan"
)

// Change flags which part of the widget changed.
type Change uint8

// Change flags.
const (
	ChangeEditor Change = 1 << iota
	ChangeQR
	ChangeScan
)

// DefaultFrameBuffer is the number of camera frames queued before new ones are dropped.
const DefaultFrameBuffer = 4

// Options configures a Widget.
type Options struct {
	Encoder      qr.Encoder
	Decoder      qr.ImageDecoder
	FrameDecoder qr.FrameDecoder
	FramePolicy  qr.FramePolicy
	FrameBuffer  int
	Logger       *slog.Logger
	// OnChange is called after every mutation, outside the widget lock.
	OnChange func(Change)
}

// Widget is safe for concurrent use.
type Widget struct {
	mu sync.Mutex

	editor  *editor.Editor
	interp  *scan.Interpreter
	payload string
	surface *qr.Surface

	encoder     qr.Encoder
	decoder     qr.ImageDecoder
	scanner     *qr.FrameScanner
	frameBuffer int
	logger      *slog.Logger
	onChange    func(Change)

	// live camera session
	frames     chan image.Image
	stopCamera context.CancelFunc
}

// New creates a widget with default content.
func New(opts Options) *Widget {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	frameBuffer := opts.FrameBuffer
	if frameBuffer <= 0 {
		frameBuffer = DefaultFrameBuffer
	}
	w := &Widget{
		editor:      editor.New(),
		interp:      scan.NewInterpreter(),
		encoder:     opts.Encoder,
		decoder:     opts.Decoder,
		frameBuffer: frameBuffer,
		logger:      logger,
		onChange:    opts.OnChange,
	}
	if opts.FrameDecoder != nil {
		w.scanner = qr.NewFrameScanner(opts.FrameDecoder, opts.FramePolicy, logger)
	}
	return w
}

func (w *Widget) emit(c Change) {
	if w.onChange != nil && c != 0 {
		w.onChange(c)
	}
}

// update runs fn under the lock and then emits its change.
func (w *Widget) update(fn func() (Change, error)) error {
	w.mu.Lock()
	c, err := fn()
	w.mu.Unlock()
	w.emit(c)
	return err
}

// =============================================================================
// Content editor
// =============================================================================

// SetMode switches between text and table content.
func (w *Widget) SetMode(m core.Mode) {
	_ = w.update(func() (Change, error) {
		w.editor.SetMode(m)
		return ChangeEditor, nil
	})
}

// SetText replaces the text content.
func (w *Widget) SetText(s string) {
	_ = w.update(func() (Change, error) {
		w.editor.SetText(s)
		return ChangeEditor, nil
	})
}

// AddRow appends an empty row.
func (w *Widget) AddRow() {
	_ = w.update(func() (Change, error) {
		w.editor.AddRow()
		return ChangeEditor, nil
	})
}

// AddColumn appends a default-named column.
func (w *Widget) AddColumn() {
	_ = w.update(func() (Change, error) {
		w.editor.AddColumn()
		return ChangeEditor, nil
	})
}

// UpdateColumnName renames the column at index.
func (w *Widget) UpdateColumnName(index int, value string) error {
	return w.update(func() (Change, error) {
		if err := w.editor.UpdateColumnName(index, value); err != nil {
			return 0, err
		}
		return ChangeEditor, nil
	})
}

// UpdateCell replaces one table cell.
func (w *Widget) UpdateCell(row, col int, value string) error {
	return w.update(func() (Change, error) {
		if err := w.editor.UpdateCell(row, col, value); err != nil {
			return 0, err
		}
		return ChangeEditor, nil
	})
}

// LoadTable replaces the table content.
func (w *Widget) LoadTable(t core.Table) {
	_ = w.update(func() (Change, error) {
		w.editor.LoadTable(t)
		return ChangeEditor, nil
	})
}

// Edit runs fn against the content editor under the widget lock, so a batch
// of edits lands as one change. Edits made before fn fails are kept.
func (w *Widget) Edit(fn func(*editor.Editor) error) error {
	return w.update(func() (Change, error) {
		if err := fn(w.editor); err != nil {
			return ChangeEditor, err
		}
		return ChangeEditor, nil
	})
}

// Table returns a copy of the table content.
func (w *Widget) Table() core.Table {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Table()
}

// =============================================================================
// Generate and download
// =============================================================================

// Generate computes the payload of the active content and issues a render
// request for it. The render outcome is not reported: a failed render (an
// empty payload included) clears the surface so a stale image is never
// downloaded, and is only logged.
func (w *Widget) Generate(ctx context.Context) (string, error) {
	var payload string
	err := w.update(func() (Change, error) {
		p, err := w.editor.Generate()
		if err != nil {
			return 0, err
		}
		payload = p
		w.payload = p
		w.render(ctx, p)
		return ChangeQR, nil
	})
	return payload, err
}

func (w *Widget) render(ctx context.Context, payload string) {
	if w.encoder == nil {
		w.surface = nil
		return
	}
	surface, err := w.encoder.Encode(ctx, payload)
	if err != nil {
		w.surface = nil
		level := slog.LevelWarn
		if errors.Is(err, core.ErrEmptyPayload) {
			level = slog.LevelDebug
		}
		w.logger.Log(ctx, level, "qr render failed", "payload_bytes", len(payload), "error", err)
		return
	}
	w.surface = surface
}

// Download returns the PNG of the most recently rendered surface.
// ok is false when nothing has been rendered.
func (w *Widget) Download() (png []byte, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.surface == nil {
		return nil, false
	}
	return w.surface.PNG, true
}

// =============================================================================
// Scanning
// =============================================================================

// ScanUpload decodes an uploaded image and stores the result, or the
// no-code sentinel when decoding fails. The decode runs outside the lock;
// a result whose ctx was cancelled meanwhile is discarded.
func (w *Widget) ScanUpload(ctx context.Context, r io.Reader) {
	if w.decoder == nil {
		return
	}
	text, err := w.decoder.DecodeImage(ctx, r)
	if ctx.Err() != nil {
		w.logger.Debug("upload scan discarded", "error", ctx.Err())
		return
	}

	_ = w.update(func() (Change, error) {
		if err != nil {
			w.logger.Debug("upload scan failed", "error", err)
			w.interp.OnDecodeFailure()
		} else {
			w.interp.OnDecoded(text, scan.SourceUpload)
		}
		return ChangeScan, nil
	})
}

// StartScanning mounts the live camera view. Frames pushed with PushFrame
// are decoded until the first match or StopScanning.
func (w *Widget) StartScanning() {
	_ = w.update(func() (Change, error) {
		gen, started := w.interp.Session().Start()
		if !started {
			return 0, nil
		}
		if w.scanner != nil {
			w.startCameraLocked(gen)
		}
		return ChangeScan, nil
	})
}

func (w *Widget) startCameraLocked(gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan image.Image, w.frameBuffer)
	w.frames = frames
	w.stopCamera = cancel

	go func() {
		err := w.scanner.Run(ctx, frames, func(text string) {
			w.onCameraMatch(gen, text)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("camera scan ended", "generation", gen, "error", err)
		}
	}()
}

func (w *Widget) stopCameraLocked() {
	if w.stopCamera != nil {
		w.stopCamera()
	}
	w.stopCamera = nil
	w.frames = nil
}

func (w *Widget) onCameraMatch(gen uint64, text string) {
	_ = w.update(func() (Change, error) {
		if !w.interp.OnCameraMatch(gen, text) {
			return 0, nil
		}
		w.stopCameraLocked()
		return ChangeScan, nil
	})
}

// StopScanning unmounts the live camera view.
func (w *Widget) StopScanning() {
	_ = w.update(func() (Change, error) {
		if !w.interp.Session().Stop() {
			return 0, nil
		}
		w.stopCameraLocked()
		return ChangeScan, nil
	})
}

// PushFrame queues a camera frame. It reports false when no session is
// running or the queue is full.
func (w *Widget) PushFrame(img image.Image) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frames == nil {
		return false
	}
	select {
	case w.frames <- img:
		return true
	default:
		return false
	}
}

// OnDecoded applies a payload decoded elsewhere (for example by a camera
// decoder outside this process).
func (w *Widget) OnDecoded(text string, src scan.Source) {
	_ = w.update(func() (Change, error) {
		w.interp.OnDecoded(text, src)
		if src == scan.SourceCamera {
			w.stopCameraLocked()
		}
		return ChangeScan, nil
	})
}

// Close releases the camera session.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interp.Session().Stop()
	w.stopCameraLocked()
}

// =============================================================================
// Snapshot
// =============================================================================

// State is an immutable copy of the widget for rendering.
type State struct {
	Mode    core.Mode
	Text    string
	Table   core.Table
	Payload string
	// HasQR is true when a surface is available for display and download.
	HasQR bool
	// QRVersion changes with every render; used to bust image caches.
	QRVersion int64
	Scanning  bool
	Result    scan.View
}

// Snapshot returns the current state.
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := State{
		Mode:     w.editor.Mode(),
		Text:     w.editor.Text(),
		Table:    w.editor.Table(),
		Payload:  w.payload,
		Scanning: w.interp.Session().Scanning(),
		Result:   w.interp.View(),
	}
	if w.surface != nil {
		s.HasQR = true
		s.QRVersion = w.surface.RenderedAt.UnixNano()
	}
	return s
}
