package qr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"
)

// FrameErrors selects what happens to frames that hold no readable code.
type FrameErrors string

// Frame error policies.
const (
	// FrameErrorsIgnore drops failed frames silently and keeps scanning.
	FrameErrorsIgnore FrameErrors = "ignore"
	// FrameErrorsLog logs each failed frame at debug level and keeps scanning.
	FrameErrorsLog FrameErrors = "log"
)

// ParseFrameErrors converts a config string to a FrameErrors policy.
func ParseFrameErrors(s string) (FrameErrors, error) {
	switch FrameErrors(strings.ToLower(strings.TrimSpace(s))) {
	case "", FrameErrorsIgnore:
		return FrameErrorsIgnore, nil
	case FrameErrorsLog:
		return FrameErrorsLog, nil
	default:
		return FrameErrorsIgnore, fmt.Errorf("unknown frame error policy %q: want ignore or log", s)
	}
}

// FramePolicy controls how a FrameScanner treats the frame stream.
type FramePolicy struct {
	Errors FrameErrors
	// MinInterval drops frames arriving sooner than this after the last
	// decode attempt. Zero decodes every frame.
	MinInterval time.Duration
	// StopOnMatch ends Run after the first decoded frame.
	StopOnMatch bool
}

// DefaultFramePolicy ignores failed frames, has no rate cap and stops on the first match.
func DefaultFramePolicy() FramePolicy {
	return FramePolicy{Errors: FrameErrorsIgnore, StopOnMatch: true}
}

// FrameScanner is the push-style StreamDecoder over a FrameDecoder.
type FrameScanner struct {
	decoder FrameDecoder
	policy  FramePolicy
	logger  *slog.Logger
	now     func() time.Time
}

var _ StreamDecoder = (*FrameScanner)(nil)

// NewFrameScanner creates a frame scanner. A nil logger discards output.
func NewFrameScanner(decoder FrameDecoder, policy FramePolicy, logger *slog.Logger) *FrameScanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FrameScanner{
		decoder: decoder,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Run decodes frames until ctx is done, frames is closed, or (with
// StopOnMatch) the first match. It returns ctx.Err() only when cancelled.
func (s *FrameScanner) Run(ctx context.Context, frames <-chan image.Image, onMatch func(text string)) error {
	var (
		last    time.Time
		dropped int
		failed  int
	)
	defer func() {
		s.logger.Debug("frame scan ended", "failed", failed, "dropped", dropped)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if frame == nil {
				continue
			}

			now := s.now()
			if s.policy.MinInterval > 0 && !last.IsZero() && now.Sub(last) < s.policy.MinInterval {
				dropped++
				continue
			}
			last = now

			text, err := s.decoder.DecodeFrame(frame)
			if err != nil {
				failed++
				if s.policy.Errors == FrameErrorsLog {
					s.logger.Debug("frame not decoded", "error", err)
				}
				continue
			}

			onMatch(text)
			if s.policy.StopOnMatch {
				return nil
			}
		}
	}
}
