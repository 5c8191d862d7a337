package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/jobs", s.handleListJobs)
		r.Get("/runs", s.handleListRuns)
		r.Get("/events", s.handleEvents)
	})
}
