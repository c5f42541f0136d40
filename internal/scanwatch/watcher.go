// Package scanwatch turns a directory into a camera: image files created or
// rewritten in it are decoded and delivered as frames.
package scanwatch

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is read.
const DefaultDebounce = 100 * time.Millisecond

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// IsImagePath reports whether path has a supported image extension.
func IsImagePath(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Config holds configuration for a Watcher.
type Config struct {
	Dir      string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher delivers images dropped into a directory as frames.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher for cfg.Dir.
func New(cfg Config) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{dir: cfg.Dir, debounce: debounce, logger: logger}
}

// Run watches the directory and sends a frame for every settled image file.
// It closes frames when it returns; it returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, frames chan<- image.Image) error {
	defer close(frames)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching for frames", "dir", w.dir)

	// path -> time of the last write
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !IsImagePath(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(pending, path)

				img, err := readImage(path)
				if err != nil {
					w.logger.Debug("skipping unreadable frame", "file", path, "error", err)
					continue
				}
				select {
				case frames <- img:
				case <-ctx.Done():
					return nil
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the watched directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
