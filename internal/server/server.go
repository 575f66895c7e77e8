package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/slok/podexec/internal/api"
	"github.com/slok/podexec/internal/app/exec"
	"github.com/slok/podexec/internal/app/list"
	"github.com/slok/podexec/internal/app/status"
	"github.com/slok/podexec/internal/log"
	"github.com/slok/podexec/internal/model"
)

// Executor runs executions and returns their events.
type Executor interface {
	Run(ctx context.Context, req exec.Request) (iter.Seq[model.Event], error)
}

//go:generate mockery --case underscore --output servermock --outpkg servermock --name Executor --structname MockExecutor --filename executor.go

// ExecutionLister lists the running executions.
type ExecutionLister interface {
	Run(ctx context.Context, req list.Request) ([]model.Execution, error)
}

// ExecutionGetter gets a running execution.
type ExecutionGetter interface {
	Run(ctx context.Context, req status.Request) (*model.Execution, error)
}

// ServerConfig is the configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr string
	Executor   Executor
	// Lister and Getter are optional, the registry endpoints are only served when set.
	Lister          ExecutionLister
	Getter          ExecutionGetter
	ShutdownTimeout time.Duration
	// MaxBodyBytes limits the request bodies.
	MaxBodyBytes int64
	TimeNow      func() time.Time
	Logger       log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8000"
	}
	if c.Executor == nil {
		return fmt.Errorf("executor is required")
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "server.HTTP"})
	return nil
}

// Server publishes executions over HTTP as event streams.
type Server struct {
	server          *http.Server
	router          *httprouter.Router
	upgrader        websocket.Upgrader
	executor        Executor
	lister          ExecutionLister
	getter          ExecutionGetter
	shutdownTimeout time.Duration
	maxBodyBytes    int64
	timeNow         func() time.Time
	logger          log.Logger
}

// NewServer creates a new HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	s := &Server{
		executor:        cfg.Executor,
		lister:          cfg.Lister,
		getter:          cfg.Getter,
		shutdownTimeout: cfg.ShutdownTimeout,
		maxBodyBytes:    cfg.MaxBodyBytes,
		timeNow:         cfg.TimeNow,
		logger:          cfg.Logger,
	}

	router := httprouter.New()
	router.GET("/", s.root)
	router.POST("/execute", s.execute)
	router.POST("/health", s.health)
	router.GET("/ws/execute", s.executeWS)
	if s.lister != nil {
		router.GET("/executions", s.listExecutions)
	}
	if s.getter != nil {
		router.GET("/executions/:id", s.getExecution)
	}
	s.router = router

	s.server = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Run starts the server and blocks until ctx is cancelled. It performs a graceful
// shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("HTTP server listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		s.logger.Infof("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		return nil
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "podexec API - Use /health for health checks or /execute for script execution",
	})
}

// decodeBody decodes the JSON body of r into v. An empty body keeps v untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON body: %w: %w", err, model.ErrNotValid)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotValid):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
	}
	writeJSON(w, code, api.ErrorResponse{Detail: err.Error()})
}
