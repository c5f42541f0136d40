// Package qr serves the rendered QR code.
package qr

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/qrsheet/internal/ui/session"
)

// SetupRoutes configures routes for the qr feature.
func SetupRoutes(router chi.Router, registry *session.Registry) error {
	handlers := NewHandlers(registry)

	router.Get("/qr/download", handlers.Download)
	router.Get("/qr/image.png", handlers.Image)

	return nil
}
