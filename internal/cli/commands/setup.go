package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/qrsheet/internal/cli/config"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Encoder *qr.SkipEncoder
	Decoder *qr.ZXingDecoder
}

// NewCommandContext builds the QR collaborators from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:     cfg,
		Logger:  config.GetLogger(cmd.Context()),
		Encoder: qr.NewSkipEncoder(cfg.QR.Size, cfg.RecoveryLevel()),
		Decoder: qr.NewZXingDecoder(),
	}
}

// WidgetOptions returns the options every widget of this process is built with.
func (c *CommandContext) WidgetOptions() widget.Options {
	return widget.Options{
		Encoder:      c.Encoder,
		Decoder:      c.Decoder,
		FrameDecoder: c.Decoder,
		FramePolicy:  c.Cfg.FramePolicy(),
		FrameBuffer:  c.Cfg.Scan.FrameBuffer,
		Logger:       c.Logger,
	}
}

// NewWidget creates a widget wired to the configured collaborators.
func (c *CommandContext) NewWidget() *widget.Widget {
	return widget.New(c.WidgetOptions())
}

// getConfig returns the current configuration, or the defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
