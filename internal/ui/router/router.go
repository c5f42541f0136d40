// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	editorFeature "github.com/leapstack-labs/qrsheet/internal/ui/features/editor"
	homeFeature "github.com/leapstack-labs/qrsheet/internal/ui/features/home"
	qrFeature "github.com/leapstack-labs/qrsheet/internal/ui/features/qr"
	scannerFeature "github.com/leapstack-labs/qrsheet/internal/ui/features/scanner"
	"github.com/leapstack-labs/qrsheet/internal/ui/resources"
	"github.com/leapstack-labs/qrsheet/internal/ui/session"
)

// Options holds settings shared by the feature routes.
type Options struct {
	MaxUploadBytes int64
	Logger         *slog.Logger
	IsDev          bool
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, registry *session.Registry, opts Options) error {
	// Hot reload endpoint for dev mode
	if opts.IsDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := homeFeature.SetupRoutes(router, registry, opts.IsDev); err != nil {
		return err
	}

	if err := editorFeature.SetupRoutes(router, registry); err != nil {
		return err
	}

	if err := qrFeature.SetupRoutes(router, registry); err != nil {
		return err
	}

	if err := scannerFeature.SetupRoutes(router, registry, opts.MaxUploadBytes, opts.Logger); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
