package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"marketwatch/internal/config"
	"marketwatch/internal/storage"
)

// CycleRunner triggers one polling cycle on demand.
type CycleRunner interface {
	RunCycle(ctx context.Context)
}

// Pinger is implemented by backends the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	store      storage.Store
	runner     CycleRunner
	db         Pinger
	cache      Pinger
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, store storage.Store, runner CycleRunner, db, cache Pinger, logger *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		store:  store,
		runner: runner,
		db:     db,
		cache:  cache,
		logger: logger,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
