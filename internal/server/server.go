// Package server provides the HTTP API and the documentation pages for docsearch.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/docsearch/internal/config"
	"github.com/hyperjump/docsearch/internal/metrics"
	"github.com/hyperjump/docsearch/internal/render"
	"github.com/hyperjump/docsearch/internal/search"
	"github.com/hyperjump/docsearch/internal/searchindex"
	"github.com/hyperjump/docsearch/internal/storage"
)

// DocsPrefix is where documentation pages are served.
const DocsPrefix = "/docs/"

// Server is the HTTP server for the docsearch API.
type Server struct {
	engine   *search.Engine
	cache    *searchindex.Cache
	config   *config.Config
	logger   *zap.Logger
	storage  storage.Storage
	docs     render.Fetcher
	metrics  *metrics.Metrics
	watching bool
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithStorage sets the page cache reported by the status endpoint.
func WithStorage(s storage.Storage) Option {
	return func(srv *Server) { srv.storage = s }
}

// WithDocs serves documentation pages from f under DocsPrefix.
func WithDocs(f render.Fetcher) Option {
	return func(srv *Server) { srv.docs = f }
}

// WithMetrics records HTTP metrics and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(srv *Server) { srv.metrics = m }
}

// WithWatching marks the index as watched for rebuilds.
func WithWatching(on bool) Option {
	return func(srv *Server) { srv.watching = on }
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *search.Engine, cache *searchindex.Cache, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		cache:  cache,
		config: cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	timeout := s.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)
	r.Get("/search", s.handleSearchRedirect)
	r.Get(DocsPrefix+"search.html", s.handleSearchPage)
	if s.docs != nil {
		r.Get(DocsPrefix+"*", s.handleDocument)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
		r.Post("/index/reload", s.handleReload)
	})

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
