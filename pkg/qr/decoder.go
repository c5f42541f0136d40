package qr

import (
	"context"
	"fmt"
	"image"
	"io"

	// Register formats accepted by the upload path.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// ZXingDecoder decodes QR codes from images with gozxing.
type ZXingDecoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder creates a decoder that tries harder on noisy images.
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeImage reads an encoded image (png, jpeg, gif) and decodes it.
func (d *ZXingDecoder) DecodeImage(ctx context.Context, r io.Reader) (string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w: %w", err, core.ErrNoQRCode)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := d.DecodeFrame(img)
	if err != nil {
		return "", fmt.Errorf("%s image: %w", format, err)
	}
	return text, nil
}

// DecodeFrame decodes an in-memory image.
func (d *ZXingDecoder) DecodeFrame(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize: %w: %w", err, core.ErrNoQRCode)
	}

	// QRCodeReader keeps per-decode state, so one per call.
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrNoQRCode, err)
	}
	return result.GetText(), nil
}
