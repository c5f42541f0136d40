// Package qr wraps the external QR collaborators: an encoder that renders a
// payload to a PNG surface, a one-shot image decoder (pull) and a frame
// scanner that notifies on every match in a stream of frames (push).
package qr

import (
	"context"
	"image"
	"io"
	"time"
)

// Surface is a rendered QR image.
type Surface struct {
	Payload    string
	PNG        []byte
	Size       int
	RenderedAt time.Time
}

// Encoder renders a payload into a scannable image.
type Encoder interface {
	Encode(ctx context.Context, payload string) (*Surface, error)
}

// ImageDecoder decodes a single uploaded image. It returns core.ErrNoQRCode
// (wrapped) when the image holds no readable code.
type ImageDecoder interface {
	DecodeImage(ctx context.Context, r io.Reader) (string, error)
}

// FrameDecoder decodes one already-decoded video frame.
type FrameDecoder interface {
	DecodeFrame(img image.Image) (string, error)
}

// StreamDecoder consumes frames until ctx is done or the frames channel is
// closed, calling onMatch for decoded text. The caller owns start and stop.
type StreamDecoder interface {
	Run(ctx context.Context, frames <-chan image.Image, onMatch func(text string)) error
}
