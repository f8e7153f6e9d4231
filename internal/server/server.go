// Package server exposes the funnel pipeline over HTTP.
//
// The server renders charts posted inline, stores chart documents under
// server-generated IDs, and resolves pointer positions against solved
// geometry for stored charts. Caching and rendering go through the same
// pipeline.Runner the CLI uses.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/funnelviz/funnelviz/pkg/cache"
	"github.com/funnelviz/funnelviz/pkg/observability"
	"github.com/funnelviz/funnelviz/pkg/pipeline"
	"github.com/funnelviz/funnelviz/pkg/store"

	apperrors "github.com/funnelviz/funnelviz/pkg/errors"
)

// Server is the funnelviz HTTP server.
type Server struct {
	cfg        Config
	logger     *log.Logger
	runner     *pipeline.Runner
	charts     store.Store
	cache      cache.Cache
	keyer      cache.Keyer
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with backends wired from the configuration.
// Redis and MongoDB connections are verified before the server is returned.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	c, err := newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	charts, err := newStore(ctx, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	// The runner owns the cache and closes it; the server shares the same
	// handle for HTTP response caching.
	s := &Server{
		cfg:    cfg,
		logger: logger,
		runner: pipeline.NewRunner(c, nil, logger),
		charts: charts,
		cache:  c,
		keyer:  cache.NewDefaultKeyer(),
	}
	s.router = s.buildRouter()
	return s, nil
}

// newCache builds the artifact cache for the configured backend. Redis
// connection attempts are retried; a cold cache server at startup is a
// transient condition.
func newCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "null":
		return cache.NewNullCache(), nil
	case "file":
		return cache.NewFileCache(cfg.ResolvedCacheDir())
	case "redis":
		var c cache.Cache
		err := cache.RetryWithBackoff(ctx, func() error {
			rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
			if err != nil {
				return cache.Retryable(err)
			}
			c = rc
			return nil
		})
		return c, err
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.CacheBackend)
}

// newStore builds the chart store for the configured backend.
func newStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		var st store.Store
		err := cache.RetryWithBackoff(ctx, func() error {
			ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
			if err != nil {
				return cache.Retryable(err)
			}
			st = ms
			return nil
		})
		return st, err
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.StoreBackend)
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.instrument)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.registerRoutes(r)
	return r
}

// instrument reports request lifecycle events to the registered HTTP hooks
// and the server logger.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration)
	})
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address and blocks until the
// server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("funnelviz server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and releases backend resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if cerr := s.runner.Close(); err == nil {
		err = cerr
	}
	if cerr := s.charts.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
