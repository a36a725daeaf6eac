// Package api serves stored frames over a read-mostly REST API.
//
// Routes live under /api/v1: frame listing, upload, deletion, column and
// row access, and single-condition queries. /metrics exposes Prometheus
// metrics and is never behind the API key.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ssargent/tabula/pkg/logging"
)

const statsInterval = 30 * time.Second

// Router returns the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/frames", s.metrics.InstrumentHandler("GET", "/api/v1/frames", s.handleListFrames))
		r.Post("/frames", s.metrics.InstrumentHandler("POST", "/api/v1/frames", s.handleCreateFrame))
		r.Get("/frames/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/frames/{id}", s.handleGetFrame))
		r.Delete("/frames/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/frames/{id}", s.handleDeleteFrame))
		r.Get("/frames/{id}/columns/{name}", s.metrics.InstrumentHandler("GET", "/api/v1/frames/{id}/columns/{name}", s.handleGetColumn))
		r.Get("/frames/{id}/rows/{idx}", s.metrics.InstrumentHandler("GET", "/api/v1/frames/{id}/rows/{idx}", s.handleGetRow))
		r.Get("/frames/{id}/query", s.metrics.InstrumentHandler("GET", "/api/v1/frames/{id}/query", s.handleQuery))
	})

	return r
}

// ListenAndServe serves the API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	bind := s.config.Bind
	if bind == "" {
		bind = "127.0.0.1"
	}
	addr := net.JoinHostPort(bind, strconv.Itoa(s.config.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.runStatsUpdater(ctx)

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting tabula API server", "addr", addr, "metrics", fmt.Sprintf("http://%s/metrics", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		logging.Info("shutting down tabula API server")
		return srv.Shutdown(shutdownCtx)
	}
}

// StartServer serves catalog with config until ctx is cancelled
func StartServer(ctx context.Context, catalog FrameCatalog, config ServerConfig) error {
	return NewServer(catalog, config).ListenAndServe(ctx)
}

// runStatsUpdater periodically refreshes catalog metrics
func (s *Server) runStatsUpdater(ctx context.Context) {
	s.updateCatalogStats()

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateCatalogStats()
		}
	}
}
