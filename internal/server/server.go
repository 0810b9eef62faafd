// Package server provides the HTTP API for the screener.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/screener/internal/config"
	"github.com/hyperjump/screener/internal/embedding"
	"github.com/hyperjump/screener/internal/indexer"
	"github.com/hyperjump/screener/internal/keyword"
	"github.com/hyperjump/screener/internal/screening"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxUploadBytes bounds multipart uploads held in memory.
const maxUploadBytes = 32 << 20

// WatchService is the subset of the inbox watcher the API manages.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the screener API.
type Server struct {
	screening *screening.Service
	indexer   *indexer.Indexer
	storage   storage.Storage
	keyword   keyword.KeywordIndex
	cache     *embedding.Cache
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server

	// uploadMemory is how much of a multipart upload is held in memory; the rest
	// spills to temp files that are removed when the request ends.
	uploadMemory int64

	watch         WatchService
	configPath    string
	watchConfigMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithWatch enables the watch directory endpoints. When configPath is set, directory
// changes are persisted to the config file.
func WithWatch(w WatchService, configPath string) Option {
	return func(s *Server) {
		s.watch = w
		s.configPath = configPath
	}
}

// WithUploadMemory sets how many bytes of a multipart upload are kept in memory.
func WithUploadMemory(n int64) Option {
	return func(s *Server) {
		s.uploadMemory = n
	}
}

// WithCache reports embedding cache size on the status endpoint.
func WithCache(c *embedding.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// NewServer creates a server with the given dependencies.
func NewServer(
	svc *screening.Service,
	idx *indexer.Indexer,
	store storage.Storage,
	kw keyword.KeywordIndex,
	cfg *config.Config,
	logger *zap.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		screening: svc,
		indexer:   idx,
		storage:   store,
		keyword:   kw,
		config:    cfg,
		logger:    utils.OrNop(logger),

		uploadMemory: maxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/screen", s.handleScreen)
		r.Post("/screen/upload", s.handleScreenUpload)
		r.Post("/screen/library", s.handleScreenLibrary)
		r.Post("/screen/export", s.handleScreenExport)
		r.Post("/explain", s.handleExplain)
		r.Get("/runs/{id}", s.handleGetRun)

		r.Post("/candidates", s.handleCreateCandidate)
		r.Get("/candidates", s.handleListCandidates)
		r.Get("/candidates/search", s.handleSearchCandidates)
		r.Get("/candidates/{id}", s.handleGetCandidate)
		r.Delete("/candidates/{id}", s.handleDeleteCandidate)

		r.Get("/status", s.handleStatus)
		r.Get("/watch/directories", s.handleWatchDirectoriesList)
		r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
		r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
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
