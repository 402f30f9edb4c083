package ui

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gohypo/app"
	"gohypo/ports"
)

// App represents the HTTP application
type App struct {
	router   *chi.Mux
	analysis *app.AnalysisService
	repo     ports.RunRepository
	renderer ports.FigureRenderer
	figExt   string
}

// Config holds HTTP application configuration
type Config struct {
	// FigureFormat decides the extension the figure endpoint serves
	FigureFormat string
}

// NewApp creates the HTTP application. repo and renderer may be nil;
// the matching endpoints then report that the feature is not configured.
func NewApp(config Config, analysis *app.AnalysisService, repo ports.RunRepository, renderer ports.FigureRenderer) *App {
	figExt := config.FigureFormat
	if figExt == "" {
		figExt = "png"
	}

	a := &App{
		router:   chi.NewRouter(),
		analysis: analysis,
		repo:     repo,
		renderer: renderer,
		figExt:   figExt,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)

	// API endpoints
	a.router.Post("/api/analyze", a.handleAnalyze)
	a.router.Get("/api/runs", a.handleListRuns)
	a.router.Get("/api/runs/{id}", a.handleGetRun)
	a.router.Delete("/api/runs/{id}", a.handleDeleteRun)

	// Rendered views
	a.router.Get("/runs/{id}/report", a.handleRunReport)
	a.router.Get("/runs/{id}/figure", a.handleRunFigure)
}

// Router exposes the configured mux, mainly for tests
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("[UI] Starting server on %s", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}
