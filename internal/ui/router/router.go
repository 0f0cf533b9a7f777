// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/kg-project/sparqlq/internal/controller"
	queryFeature "github.com/kg-project/sparqlq/internal/ui/features/query"
	"github.com/kg-project/sparqlq/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, ctl *controller.Controller, logger *slog.Logger) error {
	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	return queryFeature.SetupRoutes(router, ctl, logger)
}
