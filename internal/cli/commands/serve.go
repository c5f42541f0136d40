package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/qrsheet/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the QR widget in the browser",
		Long: `Start a local web server hosting the QR widget.

The widget provides:
- Text and table content editing
- QR code generation and PNG download
- Scanning from an uploaded image or a live camera`,
		Example: `  # Start on the default port
  qrsheet serve

  # Start on a custom port without opening a browser
  qrsheet serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Reload the page when the server restarts")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	uiCfg := cc.Cfg.UI

	// CLI flags override config file
	port := uiCfg.Port
	if cmd.Flags().Changed("port") {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser

	secret := uiCfg.SessionSecret
	if secret == "" {
		// widgets live in memory, so cookies from a previous run are useless anyway
		secret = string(securecookie.GenerateRandomKey(32))
		cc.Logger.Debug("using a random session secret")
	}

	out := cmd.OutOrStdout()
	server := ui.NewServer(ui.Config{
		Widget:         cc.WidgetOptions(),
		Port:           port,
		SessionSecret:  secret,
		SessionTTL:     uiCfg.SessionTTL,
		MaxUploadBytes: uiCfg.MaxUploadBytes,
		IsDev:          opts.Dev,
		Logger:         cc.Logger,
		OnListen: func(url string) {
			_, _ = fmt.Fprintf(out, "Serving the QR widget on %s\n", url)
			_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")
			if autoOpen {
				go openBrowser(url)
			}
		},
	})

	return server.Serve(cmd.Context())
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
