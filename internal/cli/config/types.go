// Package config provides configuration management for the qrsheet CLI.
//
// Values are layered with koanf: built-in defaults, then qrsheet.yaml, then
// QRSHEET_ environment variables, then explicitly set flags.
package config

import (
	"time"

	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

// Default configuration values.
const (
	DefaultPort           = 8765
	DefaultSessionTTL     = 30 * time.Minute
	DefaultMaxUploadBytes = 10 << 20
	DefaultQRSize         = qr.DefaultSize
	DefaultRecovery       = qr.DefaultRecovery
	DefaultFrameErrors    = string(qr.FrameErrorsIgnore)
	DefaultFrameBuffer    = widget.DefaultFrameBuffer
	DefaultLogFormat      = "text"
	DefaultOutputDir      = "."
)

// UIConfig holds configuration for the web UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	SessionSecret string `koanf:"session_secret"`
	// SessionTTL is how long an idle browser keeps its widget.
	SessionTTL     time.Duration `koanf:"session_ttl"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
}

// QRConfig holds QR rendering options.
type QRConfig struct {
	Size     int    `koanf:"size"`
	Recovery string `koanf:"recovery"`
}

// ScanConfig holds the live scan frame policy.
type ScanConfig struct {
	FrameErrors   string        `koanf:"frame_errors"`
	FrameInterval time.Duration `koanf:"frame_interval"`
	FrameBuffer   int           `koanf:"frame_buffer"`
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose   bool       `koanf:"verbose"`
	LogFormat string     `koanf:"log_format"`
	UI        UIConfig   `koanf:"ui"`
	QR        QRConfig   `koanf:"qr"`
	Scan      ScanConfig `koanf:"scan"`
	OutputDir string     `koanf:"output_dir"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogFormat: DefaultLogFormat,
		UI: UIConfig{
			Port:           DefaultPort,
			AutoOpen:       true,
			SessionTTL:     DefaultSessionTTL,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		QR: QRConfig{
			Size:     DefaultQRSize,
			Recovery: DefaultRecovery,
		},
		Scan: ScanConfig{
			FrameErrors: DefaultFrameErrors,
			FrameBuffer: DefaultFrameBuffer,
		},
		OutputDir: DefaultOutputDir,
	}
}

// defaults is the flat koanf view of Default.
func defaults() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"verbose":             d.Verbose,
		"log_format":          d.LogFormat,
		"ui.port":             d.UI.Port,
		"ui.auto_open":        d.UI.AutoOpen,
		"ui.session_secret":   d.UI.SessionSecret,
		"ui.session_ttl":      d.UI.SessionTTL.String(),
		"ui.max_upload_bytes": d.UI.MaxUploadBytes,
		"qr.size":             d.QR.Size,
		"qr.recovery":         d.QR.Recovery,
		"scan.frame_errors":   d.Scan.FrameErrors,
		"scan.frame_interval": d.Scan.FrameInterval.String(),
		"scan.frame_buffer":   d.Scan.FrameBuffer,
		"output_dir":          d.OutputDir,
	}
}
