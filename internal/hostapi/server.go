package hostapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"subnode/internal/history"
	"subnode/internal/logging"
	"subnode/internal/node"
)

// HistoryReader is the read side of the job ledger. *history.Store satisfies it.
type HistoryReader interface {
	List(ctx context.Context, limit int, statuses ...history.Status) ([]*history.Record, error)
	Get(ctx context.Context, id string) (*history.Record, error)
}

// Server exposes a node registry over HTTP.
type Server struct {
	registry *node.Registry
	history  HistoryReader
	logger   *slog.Logger
	engine   *gin.Engine

	listener net.Listener
	server   *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory enables the /jobs routes.
func WithHistory(reader HistoryReader) Option {
	return func(s *Server) { s.history = reader }
}

// New builds the routes for registry.
func New(registry *node.Registry, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{registry: registry, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "hostapi")

	engine := gin.New()
	engine.Use(recovery(s.logger), requestID(), requestLogger(s.logger))
	engine.GET("/health", s.handleHealth)
	engine.GET("/nodes", s.handleListNodes)
	engine.GET("/nodes/:id", s.handleGetNode)
	engine.POST("/nodes/:id/run", s.handleRunNode)
	engine.GET("/jobs", s.handleListJobs)
	engine.GET("/jobs/:id", s.handleGetJob)
	engine.NoRoute(func(c *gin.Context) {
		s.writeError(c, http.StatusNotFound, ErrorBody{Kind: "not_found", Message: "route not found"})
	})
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds bind and serves in the background until ctx is cancelled or
// Stop is called.
func (s *Server) Start(ctx context.Context, bind string) error {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return errors.New("hostapi: bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("hostapi listen: %w", err)
	}
	s.listener = listener
	// No write timeout: a run lasts as long as transcription and encoding.
	s.server = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("host api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("host api listening",
		logging.String(logging.FieldEventType, "server_start"),
		logging.String("address", listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
