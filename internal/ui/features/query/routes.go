package query

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/kg-project/sparqlq/internal/controller"
)

// SetupRoutes registers the query feature routes.
func SetupRoutes(router chi.Router, ctl *controller.Controller, logger *slog.Logger) error {
	handlers := NewHandlers(ctl, logger)

	router.Get("/", handlers.QueryPage)
	router.Get("/sse", handlers.StateSSE)
	router.Get("/healthz", handlers.Healthz)

	router.Route("/api/query", func(r chi.Router) {
		r.Post("/execute", handlers.ExecuteSSE)
		r.Post("/example", handlers.ExampleSSE)
	})

	return nil
}
