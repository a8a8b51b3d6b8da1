// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mcftira/baropodometry-web/cmd/baropod-api/handlers"
	"github.com/mcftira/baropodometry-web/cmd/baropod-api/middleware"
	"github.com/mcftira/baropodometry-web/internal/analysis"
	"github.com/mcftira/baropodometry-web/internal/config"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, settingsPath string, factory analysis.OracleFactory) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	providers := config.DefaultProviders(settingsPath)
	service := analysis.NewService(cfg, providers, factory, logger)

	analyzeHandler := handlers.NewAnalyzeHandler(logger, service)
	settingsHandler := handlers.NewSettingsHandler(logger, settingsPath, providers)
	healthHandler := handlers.NewHealthHandler(cfg, settingsPath)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", analyzeHandler.Analyze)
		r.Post("/bootstrap-key", settingsHandler.Bootstrap)
		r.Get("/config", settingsHandler.View)
		r.Get("/health", healthHandler.Health)
		r.Get("/test", healthHandler.Test)
	})

	return r
}
