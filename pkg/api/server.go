// Package api serves the settings store over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route of server. gatherer backs /metrics.
func NewRouter(server *Server, metrics *Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(server.config.APIKey)))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		r.Get("/settings", metrics.InstrumentHandler("GET", "/api/v1/settings", server.handleGetSettings))
		r.Post("/settings", metrics.InstrumentHandler("POST", "/api/v1/settings", server.handleRestoreSettings))
		r.Get("/settings/{key}", metrics.InstrumentHandler("GET", "/api/v1/settings/{key}", server.handleGetSetting))
		r.Put("/settings/{key}", metrics.InstrumentHandler("PUT", "/api/v1/settings/{key}", server.handlePutSetting))
		r.Delete("/settings/{key}", metrics.InstrumentHandler("DELETE", "/api/v1/settings/{key}", server.handleDeleteSetting))

		r.Get("/stats", metrics.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
		r.Post("/save", metrics.InstrumentHandler("POST", "/api/v1/save", server.handleSave))

		r.Get("/snapshots", metrics.InstrumentHandler("GET", "/api/v1/snapshots", server.handleListSnapshots))
		r.Post("/snapshots", metrics.InstrumentHandler("POST", "/api/v1/snapshots", server.handleCreateSnapshot))
		r.Post("/snapshots/{id}/restore",
			metrics.InstrumentHandler("POST", "/api/v1/snapshots/{id}/restore", server.handleRestoreSnapshot))
		r.Delete("/snapshots/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/snapshots/{id}", server.handleDeleteSnapshot))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully
func StartServer(ctx context.Context, deps Dependencies, config ServerConfig) error {
	metrics := NewMetrics(prometheus.DefaultRegisterer)
	server := NewServer(deps, config, metrics)

	httpServer := &http.Server{
		Addr:    net.JoinHostPort(config.Bind, strconv.Itoa(config.Port)),
		Handler: NewRouter(server, metrics, prometheus.DefaultGatherer),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start background metrics updater
	go server.startMetricsUpdater(ctx)

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("api: listening", slog.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
	defer stop()

	server.logger.Info("api: shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
