package qr

import (
	"context"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// Default rendering parameters.
const (
	DefaultSize     = 256
	DefaultRecovery = "medium"

	// MinSize is the smallest pixel size that still fits a version 1 symbol.
	MinSize = 21
)

// ParseRecoveryLevel converts a config string to a recovery level.
func ParseRecoveryLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return qrcode.Low, nil
	case "", "medium", "m":
		return qrcode.Medium, nil
	case "high", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	default:
		return qrcode.Medium, fmt.Errorf("unknown recovery level %q: want low, medium, high or highest", s)
	}
}

// SkipEncoder renders PNG surfaces with skip2/go-qrcode.
type SkipEncoder struct {
	size  int
	level qrcode.RecoveryLevel
	now   func() time.Time
}

// NewSkipEncoder creates an encoder. A size below MinSize falls back to DefaultSize.
func NewSkipEncoder(size int, level qrcode.RecoveryLevel) *SkipEncoder {
	if size < MinSize {
		size = DefaultSize
	}
	return &SkipEncoder{size: size, level: level, now: time.Now}
}

// Encode renders payload as a PNG.
func (e *SkipEncoder) Encode(ctx context.Context, payload string) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, core.ErrEmptyPayload
	}

	code, err := qrcode.New(payload, e.level)
	if err != nil {
		return nil, fmt.Errorf("encode %d byte payload: %w", len(payload), err)
	}
	png, err := code.PNG(e.size)
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}

	return &Surface{
		Payload:    payload,
		PNG:        png,
		Size:       e.size,
		RenderedAt: e.now(),
	}, nil
}

// Terminal renders payload with half-block characters for a terminal.
func (e *SkipEncoder) Terminal(payload string) (string, error) {
	if payload == "" {
		return "", core.ErrEmptyPayload
	}
	code, err := qrcode.New(payload, e.level)
	if err != nil {
		return "", fmt.Errorf("encode %d byte payload: %w", len(payload), err)
	}
	return code.ToSmallString(false), nil
}
