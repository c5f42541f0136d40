package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/qrsheet/internal/tableio"
	"github.com/leapstack-labs/qrsheet/internal/widget"
	"github.com/leapstack-labs/qrsheet/pkg/core"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Text     string
	Table    string
	Out      string
	Terminal bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Encode text or a table as a QR code",
		Long: `Encode text or a table as a QR code PNG.

A table file (CSV, YAML or XLSX) is encoded as {"columns": [...], "rows": [[...]]},
the same payload the widget produces in table mode. Use --out - to write the
PNG to stdout.`,
		Example: `  # Encode a URL into ./qrcode.png
  qrsheet generate --text https://example.com

  # Encode a CSV table and print it to the terminal
  qrsheet generate --table prices.csv --terminal`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "Text to encode")
	cmd.Flags().StringVar(&opts.Table, "table", "", "Table file to encode (.csv, .yaml, .xlsx)")
	cmd.Flags().StringVarP(&opts.Out, "out", "O", "", "Output PNG path, - for stdout (default: <output_dir>/qrcode.png)")
	cmd.Flags().BoolVar(&opts.Terminal, "terminal", false, "Print the code to the terminal instead of writing a PNG")
	cmd.MarkFlagsMutuallyExclusive("text", "table")
	cmd.MarkFlagsOneRequired("text", "table")
	cmd.MarkFlagsMutuallyExclusive("out", "terminal")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cc := NewCommandContext(cmd)
	w := cc.NewWidget()
	defer w.Close()

	if err := loadContent(w, opts); err != nil {
		return err
	}

	payload, err := w.Generate(cmd.Context())
	if err != nil {
		return fmt.Errorf("generate payload: %w", err)
	}
	cc.Logger.Debug("generated payload", "bytes", len(payload))

	if opts.Terminal {
		art, err := cc.Encoder.Terminal(payload)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), art)
		return nil
	}

	png, ok := w.Download()
	if !ok {
		// the widget only logs render failures; surface the reason here
		if payload == "" {
			return core.ErrEmptyPayload
		}
		return errors.New("failed to render QR code")
	}

	return writePNG(cmd, opts.Out, cc.Cfg.OutputDir, png)
}

// loadContent puts the text or the table file into the widget's editor.
func loadContent(w *widget.Widget, opts *GenerateOptions) error {
	if opts.Table == "" {
		w.SetMode(core.ModeText)
		w.SetText(opts.Text)
		return nil
	}

	format, err := tableio.FormatFromPath(opts.Table)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.Table)
	if err != nil {
		return fmt.Errorf("read table: %w", err)
	}
	t, err := tableio.Read(format, data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.Table, err)
	}
	w.SetMode(core.ModeTable)
	w.LoadTable(t)
	return nil
}

func writePNG(cmd *cobra.Command, out, outputDir string, png []byte) error {
	stdout := cmd.OutOrStdout()

	if out == "-" {
		if isTerminal(stdout) {
			return errors.New("refusing to write a PNG to a terminal, use --terminal or redirect stdout")
		}
		_, err := stdout.Write(png)
		return err
	}

	if out == "" {
		out = filepath.Join(outputDir, core.DownloadFilename)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, png, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	_, _ = fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", out, len(png))
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
