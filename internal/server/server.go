// Package server exposes dependency analysis over HTTP.
//
// The API is a thin layer over the resolver, risk, and graph packages:
// POST /api/analyze runs a full resolve-score-convert pipeline and returns
// the report and graph as JSON. Structured error codes map to HTTP statuses
// so clients can distinguish bad input from upstream registry failures.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/tree"
)

// Analyzer resolves a package into an annotated dependency tree. It is
// satisfied by a resolver wrapper in production and by stubs in tests.
type Analyzer interface {
	Resolve(ctx context.Context, name, rangeSpec string, maxDepth int) (*tree.Node, error)
}

// Config holds server settings.
type Config struct {
	Addr            string        // listen address, e.g. ":8080"
	ShutdownTimeout time.Duration // grace period for in-flight requests
	Logger          *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// Server is the HTTP API server.
type Server struct {
	cfg      Config
	analyzer Analyzer
	logger   *log.Logger
	http     *http.Server
}

// New creates a server with its routes registered.
func New(cfg Config, analyzer Analyzer) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   cfg.Logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the chi router. Exposed separately so tests can drive the
// handler tree through httptest without binding a socket.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/analyze", s.handleAnalyze)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	s.logger.Infof("Listening on %s", s.cfg.Addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags every request with a uuid, echoed in the X-Request-ID
// response header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		id, _ := r.Context().Value(requestIDKey).(string)
		s.logger.Debugf("%s %s id=%s (%s)", r.Method, r.URL.Path, id, time.Since(start).Round(time.Millisecond))
	})
}

// statusFor maps structured error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidRange, errors.ErrCodeInvalidGraph:
		return http.StatusBadRequest
	case errors.ErrCodePackageNotFound, errors.ErrCodeVersionNotFound, errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork, errors.ErrCodeMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
