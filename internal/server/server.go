// Package server exposes the Garmin health database and its maintenance
// operations over HTTP. Readers open the database per request, so the
// external sync tool can replace it between requests without coordination.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garmindash/internal/paths"
	"garmindash/internal/settings"
	"garmindash/internal/syncer"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	paths    paths.Paths
	settings *settings.Store
	syncer   *syncer.Runner
	log      *slog.Logger
	router   chi.Router

	// writeMu serializes update and erase. Readers never take it: they see
	// whatever state the database file is in, which SQLite keeps consistent.
	writeMu sync.Mutex
}

// New creates a new Server with all routes configured.
func New(p paths.Paths, st *settings.Store, run *syncer.Runner, log *slog.Logger) *Server {
	s := &Server{
		paths:    p,
		settings: st,
		syncer:   run,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Metrics)
	s.router.Use(CORS)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Read endpoints (no auth — tsnet handles access)
		r.Get("/daily-summary", s.handleDailySummary)
		r.Get("/sleep", s.handleSleep)
		r.Get("/steps", s.handleSteps)
		r.Get("/stress", s.handleStress)
		r.Get("/exercise", s.handleExercise)
		r.Get("/db-info", s.handleDBInfo)
		r.Get("/update/log", s.handleUpdateLog)
		r.Get("/config", s.handleGetConfig)

		// Maintenance endpoints
		r.Post("/update", s.handleUpdate)
		r.Post("/config", s.handlePostConfig)
		r.Post("/ensure-folders", s.handleEnsureFolders)
		r.Delete("/erase", s.handleErase)
	})
}
