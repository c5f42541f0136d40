// Package scanner provides the upload and camera scanning endpoints.
package scanner

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/qrsheet/internal/ui/session"
)

// SetupRoutes configures routes for the scanner feature.
func SetupRoutes(router chi.Router, registry *session.Registry, maxUploadBytes int64, logger *slog.Logger) error {
	handlers := NewHandlers(registry, maxUploadBytes, logger)

	router.Route("/scan", func(r chi.Router) {
		r.Post("/start", handlers.Start)
		r.Post("/stop", handlers.Stop)
		r.Post("/frames", handlers.PushFrame)
		r.Post("/upload", handlers.Upload)
	})

	return nil
}
