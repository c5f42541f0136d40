package commands

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/qrsheet/internal/tui"
)

// TUIOptions holds options for the tui command.
type TUIOptions struct {
	NoColor bool
}

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	opts := &TUIOptions{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit and generate QR codes in the terminal",
		Long: `Start the terminal editor.

Keys: tab switches between text and table, arrows or hjkl move, enter edits,
a adds a row, A adds a column, g generates, ctrl+s saves qrcode.png and q quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colors")

	return cmd
}

func runTUI(cmd *cobra.Command, opts *TUIOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("tui needs an interactive terminal")
	}
	if opts.NoColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cc := NewCommandContext(cmd)
	w := cc.NewWidget()
	defer w.Close()

	m := tui.New(w, cc.Encoder, cc.Cfg.OutputDir)
	return tui.Run(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
}
