// Package server exposes the calculation engine over a small JSON API:
// ad-hoc runs, sensitivity analyses, and the stored-analysis archive.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	store  store.Store
}

// New creates a configured API server with all routes and middleware.
// The store may be nil; archive endpoints then return 503.
func New(cfg *config.Config, st store.Store) *Server {
	s := &Server{cfg: cfg, store: st}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("server: listening", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)
		r.Get("/parameters", s.handleParameters)

		r.Post("/run", s.handleRun)
		r.Post("/scenarios", s.handleScenarios)
		r.Post("/subgroups", s.handleSubgroups)
		r.Post("/tornado", s.handleTornado)
		r.Post("/psa", s.handlePSA)
		r.Post("/threshold", s.handleThreshold)

		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Delete("/analyses/{id}", s.handleDeleteAnalysis)
	})

	return r
}
