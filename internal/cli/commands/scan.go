package commands

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/qrsheet/internal/scanwatch"
	"github.com/leapstack-labs/qrsheet/internal/tableio"
	"github.com/leapstack-labs/qrsheet/pkg/qr"
	"github.com/leapstack-labs/qrsheet/pkg/scan"
)

// ScanOptions holds options for the scan command.
type ScanOptions struct {
	Watch string
	Raw   bool
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [image...]",
		Short: "Decode QR codes from images",
		Long: `Decode the QR code in each image and print its text.

When the text is a {"columns": [...], "rows": [[...]]} document it is also
printed as a table. An image without a readable code prints
"No QR code found in image."

With --watch, images written into a directory are scanned as they arrive,
like camera frames, until the first code is found.`,
		Example: `  # Decode a single image
  qrsheet scan qrcode.png

  # Wait for a code to appear in a directory
  qrsheet scan --watch ./frames`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Watch != "" {
				if len(args) > 0 {
					return errors.New("--watch does not take image arguments")
				}
				return runScanWatch(cmd, opts)
			}
			if len(args) == 0 {
				return errors.New("at least one image is required, or use --watch")
			}
			return runScanImages(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Watch, "watch", "w", "", "Directory to watch for image frames")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print only the decoded text, never a table")

	return cmd
}

func runScanImages(cmd *cobra.Command, opts *ScanOptions, paths []string) error {
	cc := NewCommandContext(cmd)
	out := cmd.OutOrStdout()

	for i, path := range paths {
		if len(paths) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "==> %s <==\n", path)
		}

		interp := scan.NewInterpreter()
		if err := scanFile(cmd.Context(), cc.Decoder, path, interp); err != nil {
			return err
		}
		printResult(out, interp.View(), opts.Raw)
	}
	return nil
}

// scanFile decodes path into interp. Only an unreadable file is an error;
// an image without a code sets the sentinel.
func scanFile(ctx context.Context, decoder qr.ImageDecoder, path string, interp *scan.Interpreter) error {
	f, err := os.Open(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	text, err := decoder.DecodeImage(ctx, f)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		interp.OnDecodeFailure()
		return nil
	}
	interp.OnDecoded(text, scan.SourceUpload)
	return nil
}

func runScanWatch(cmd *cobra.Command, opts *ScanOptions) error {
	cc := NewCommandContext(cmd)
	out := cmd.OutOrStdout()

	info, err := os.Stat(opts.Watch)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", opts.Watch)
	}

	interp := scan.NewInterpreter()
	interp.Session().Start()

	_, _ = fmt.Fprintf(out, "Scanning images written to %s (Ctrl+C to stop)\n", opts.Watch)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	frames := make(chan image.Image, cc.Cfg.Scan.FrameBuffer)
	watcher := scanwatch.New(scanwatch.Config{Dir: opts.Watch, Logger: cc.Logger})
	scanner := qr.NewFrameScanner(cc.Decoder, cc.Cfg.FramePolicy(), cc.Logger)

	matched := false
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return watcher.Run(egctx, frames)
	})
	eg.Go(func() error {
		defer cancel()
		err := scanner.Run(egctx, frames, func(text string) {
			interp.OnDecoded(text, scan.SourceCamera)
			matched = true
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	if !matched {
		// interrupted before any frame decoded
		cc.Logger.Debug("watch stopped without a match", "dir", opts.Watch)
		return nil
	}
	printResult(out, interp.View(), opts.Raw)
	return nil
}

func printResult(out io.Writer, view scan.View, raw bool) {
	_, _ = fmt.Fprintln(out, view.Raw)
	if raw || view.Table == nil {
		return
	}
	_, _ = fmt.Fprintln(out)
	tableio.WriteText(out, *view.Table)
}
