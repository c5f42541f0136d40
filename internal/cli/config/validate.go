package config

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.UI.Port < 0 || c.UI.Port > 65535 {
		errs = append(errs, fmt.Errorf("ui.port %d is outside 0-65535", c.UI.Port))
	}
	if c.UI.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("ui.session_ttl must not be negative"))
	}
	if c.UI.MaxUploadBytes < 0 {
		errs = append(errs, fmt.Errorf("ui.max_upload_bytes must not be negative"))
	}
	if c.QR.Size < qr.MinSize {
		errs = append(errs, fmt.Errorf("qr.size %d is below the minimum of %d", c.QR.Size, qr.MinSize))
	}
	if _, err := qr.ParseRecoveryLevel(c.QR.Recovery); err != nil {
		errs = append(errs, fmt.Errorf("qr.recovery: %w", err))
	}
	if _, err := qr.ParseFrameErrors(c.Scan.FrameErrors); err != nil {
		errs = append(errs, fmt.Errorf("scan.frame_errors: %w", err))
	}
	if c.Scan.FrameInterval < 0 {
		errs = append(errs, fmt.Errorf("scan.frame_interval must not be negative"))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// RecoveryLevel returns the parsed qr.recovery value.
func (c *Config) RecoveryLevel() qrcode.RecoveryLevel {
	level, err := qr.ParseRecoveryLevel(c.QR.Recovery)
	if err != nil {
		return qrcode.Medium
	}
	return level
}

// FramePolicy returns the live scan policy. A match always ends the scan.
func (c *Config) FramePolicy() qr.FramePolicy {
	policy := qr.DefaultFramePolicy()
	if errs, err := qr.ParseFrameErrors(c.Scan.FrameErrors); err == nil {
		policy.Errors = errs
	}
	policy.MinInterval = c.Scan.FrameInterval
	return policy
}
