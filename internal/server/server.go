package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scrapekit-ai/scrapekit/internal/config"
	"github.com/scrapekit-ai/scrapekit/internal/daemon"
	"github.com/scrapekit-ai/scrapekit/internal/logging"
	"github.com/scrapekit-ai/scrapekit/internal/storage"
)

// Config holds server configuration.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration. The write
// timeout stays unset so the SSE stream is never cut mid-connection.
func DefaultConfig() Config {
	return Config{
		Addr:            config.DefaultServerAddr,
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server exposes the daemon's jobs, run history and event stream over
// HTTP.
type Server struct {
	config  Config
	router  *chi.Mux
	httpSrv *http.Server
	store   *storage.RunStore

	mu   sync.RWMutex
	jobs []daemon.Job
}

// New creates a server. store may be nil when the daemon runs without
// persistence; job listings then carry no last-run information.
func New(cfg Config, store *storage.RunStore) *Server {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		store:  store,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// SetJobs replaces the job list the server reports. Called at startup
// and again after each config reload.
func (s *Server) SetJobs(jobs []daemon.Job) {
	s.mu.Lock()
	s.jobs = jobs
	s.mu.Unlock()
}

func (s *Server) jobList() []daemon.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Serve runs the server until ctx is cancelled, then drains open
// connections within the shutdown timeout. In-flight SSE streams are
// ended by the base context so the drain does not wait on them.
func (s *Server) Serve(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:        s.config.Addr,
		Handler:     s.router,
		ReadTimeout: s.config.ReadTimeout,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()

	logging.Info().Str("addr", s.config.Addr).Msg("status server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("status server shutdown incomplete")
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
