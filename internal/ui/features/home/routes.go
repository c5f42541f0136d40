// Package home serves the widget page and its live update stream.
package home

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/qrsheet/internal/ui/session"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router, registry *session.Registry, isDev bool) error {
	handlers := NewHandlers(registry, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.HomePageUpdates)

	return nil
}
