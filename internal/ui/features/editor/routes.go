// Package editor provides the content editor endpoints.
package editor

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/qrsheet/internal/ui/session"
)

// SetupRoutes configures routes for the editor feature.
func SetupRoutes(router chi.Router, registry *session.Registry) error {
	handlers := NewHandlers(registry)

	router.Route("/editor", func(r chi.Router) {
		r.Post("/mode", handlers.SetMode)
		r.Post("/text", handlers.SetText)
		r.Post("/rows", handlers.AddRow)
		r.Post("/columns", handlers.AddColumn)
		r.Post("/columns/{col}", handlers.UpdateColumnName)
		r.Post("/cells/{row}/{col}", handlers.UpdateCell)
		r.Post("/generate", handlers.Generate)
		r.Get("/export.csv", handlers.ExportCSV)
		r.Get("/export.xlsx", handlers.ExportXLSX)
	})

	return nil
}
