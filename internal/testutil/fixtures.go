package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

// QRPNG renders payload as a PNG with the production encoder.
func QRPNG(t testing.TB, payload string) []byte {
	t.Helper()
	surface, err := qr.NewSkipEncoder(qr.DefaultSize, qrcode.Medium).Encode(context.Background(), payload)
	require.NoError(t, err)
	return surface.PNG
}

// QRImage renders payload as a decoded image, ready to be used as a camera frame.
func QRImage(t testing.TB, payload string) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(QRPNG(t, payload)))
	require.NoError(t, err)
	return img
}

// BlankPNG returns a white PNG with no QR code in it.
func BlankPNG(t testing.TB) []byte {
	t.Helper()
	return encodePNG(t, BlankImage())
}

// BlankImage returns a white image with no QR code in it.
func BlankImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func encodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
