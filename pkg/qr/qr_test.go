package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	enc := NewSkipEncoder(DefaultSize, qrcode.Medium)
	dec := NewZXingDecoder()

	payloads := []string{
		"hello",
		`{"columns":["Column 1","Column 2"],"rows":[["",""]]}`,
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			surface, err := enc.Encode(context.Background(), payload)
			require.NoError(t, err)
			assert.Equal(t, payload, surface.Payload)
			assert.Equal(t, DefaultSize, surface.Size)
			assert.False(t, surface.RenderedAt.IsZero())

			text, err := dec.DecodeImage(context.Background(), bytes.NewReader(surface.PNG))
			require.NoError(t, err)
			assert.Equal(t, payload, text)
		})
	}
}

func TestEncode_EmptyPayload(t *testing.T) {
	_, err := NewSkipEncoder(DefaultSize, qrcode.Medium).Encode(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyPayload)
}

func TestEncode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSkipEncoder(DefaultSize, qrcode.Medium).Encode(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSkipEncoder_SmallSizeFallsBack(t *testing.T) {
	enc := NewSkipEncoder(5, qrcode.Low)
	assert.Equal(t, DefaultSize, enc.size)
}

func TestTerminal(t *testing.T) {
	enc := NewSkipEncoder(DefaultSize, qrcode.Low)

	out, err := enc.Terminal("hi")
	require.NoError(t, err)
	assert.Greater(t, strings.Count(out, "\n"), 5)

	_, err = enc.Terminal("")
	assert.ErrorIs(t, err, core.ErrEmptyPayload)
}

func TestDecodeImage_NoCode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	_, err := NewZXingDecoder().DecodeImage(context.Background(), &buf)
	assert.ErrorIs(t, err, core.ErrNoQRCode)
}

func TestDecodeImage_NotAnImage(t *testing.T) {
	_, err := NewZXingDecoder().DecodeImage(context.Background(), strings.NewReader("definitely not a png"))
	assert.ErrorIs(t, err, core.ErrNoQRCode)
}

func TestParseRecoveryLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    qrcode.RecoveryLevel
		wantErr bool
	}{
		{"low", qrcode.Low, false},
		{"", qrcode.Medium, false},
		{"Medium", qrcode.Medium, false},
		{"high", qrcode.High, false},
		{"highest", qrcode.Highest, false},
		{"extreme", qrcode.Medium, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRecoveryLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// FrameScanner
// =============================================================================

// fakeFrames decodes frames whose top-left pixel is black to the frame's label.
type fakeFrames struct {
	calls int
}

func (f *fakeFrames) DecodeFrame(img image.Image) (string, error) {
	f.calls++
	r, _, _, _ := img.At(0, 0).RGBA()
	if r == 0 {
		return "match", nil
	}
	return "", core.ErrNoQRCode
}

func frame(match bool) image.Image {
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	if !match {
		img.Set(0, 0, color.White)
	}
	return img
}

func TestFrameScanner_StopsOnFirstMatch(t *testing.T) {
	dec := &fakeFrames{}
	s := NewFrameScanner(dec, DefaultFramePolicy(), nil)

	frames := make(chan image.Image, 4)
	frames <- frame(false)
	frames <- frame(true)
	frames <- frame(true)

	var matches []string
	err := s.Run(context.Background(), frames, func(text string) { matches = append(matches, text) })

	require.NoError(t, err)
	assert.Equal(t, []string{"match"}, matches)
	assert.Equal(t, 2, dec.calls, "frames after the match must not be decoded")
}

func TestFrameScanner_ContinuousWithoutStop(t *testing.T) {
	policy := DefaultFramePolicy()
	policy.StopOnMatch = false
	s := NewFrameScanner(&fakeFrames{}, policy, nil)

	frames := make(chan image.Image, 3)
	frames <- frame(true)
	frames <- frame(false)
	frames <- frame(true)
	close(frames)

	count := 0
	require.NoError(t, s.Run(context.Background(), frames, func(string) { count++ }))
	assert.Equal(t, 2, count)
}

func TestFrameScanner_Cancelled(t *testing.T) {
	s := NewFrameScanner(&fakeFrames{}, DefaultFramePolicy(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, make(chan image.Image), func(string) { t.Fatal("unexpected match") })
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFrameScanner_MinIntervalDropsFrames(t *testing.T) {
	dec := &fakeFrames{}
	policy := FramePolicy{Errors: FrameErrorsLog, MinInterval: 100}
	s := NewFrameScanner(dec, policy, nil)

	// Clock advances 40ns per frame: attempts at 40, 160, 280
	var tick int64
	s.now = func() time.Time {
		tick += 40
		return time.Unix(0, tick)
	}

	frames := make(chan image.Image, 7)
	for i := 0; i < 7; i++ {
		frames <- frame(false)
	}
	close(frames)

	require.NoError(t, s.Run(context.Background(), frames, func(string) {}))
	assert.Equal(t, 3, dec.calls)
}

func TestParseFrameErrors(t *testing.T) {
	got, err := ParseFrameErrors("LOG")
	require.NoError(t, err)
	assert.Equal(t, FrameErrorsLog, got)

	got, err = ParseFrameErrors("")
	require.NoError(t, err)
	assert.Equal(t, FrameErrorsIgnore, got)

	_, err = ParseFrameErrors("panic")
	assert.Error(t, err)
}
