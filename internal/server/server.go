// Package server exposes certificate checks over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/certwatch-app/certcheck/internal/checker"
)

const shutdownTimeout = 10 * time.Second

// maxDomainsPerRequest bounds the comma-separated list of a single request
const maxDomainsPerRequest = 50

// Server serves GET /{domains} with the JSON results of a check
type Server struct {
	router  chi.Router
	checker *checker.Checker
	logger  *zap.Logger
	addr    string
}

// New creates a Server listening on addr
func New(addr string, c *checker.Checker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Domains come from callers, so no per-domain series are kept
	if c != nil {
		c = c.WithDomainMetrics(false)
	}

	s := &Server{
		router:  chi.NewRouter(),
		checker: c,
		logger:  logger,
		addr:    addr,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", handleHealthz)
	s.router.Get("/", s.handleMissingDomain)
	s.router.Get("/{domains}", s.handleCheck)
}

// Handler returns the HTTP handler, for embedding or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best effort
	w.Write([]byte("ok"))
}

func (s *Server) handleMissingDomain(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusOK, "domain name is required, e.g. /example.com or /example.com,example.org")
}

// handleCheck answers with one object for a single domain and an array
// otherwise. Every failure is reported as {"error": ...}.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	domains := checker.SplitDomains(chi.URLParam(r, "domains"))
	if len(domains) > maxDomainsPerRequest {
		WriteError(w, http.StatusOK, fmt.Sprintf("too many domains: %d given, at most %d per request", len(domains), maxDomainsPerRequest))
		return
	}

	c := s.checker
	if raw := r.URL.Query().Get("grace"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusOK, fmt.Sprintf("invalid grace %q: must be a whole number of days", raw))
			return
		}
		c, err = s.checker.WithGrace(days)
		if err != nil {
			WriteError(w, http.StatusOK, err.Error())
			return
		}
	}

	outcomes, err := c.CheckMany(r.Context(), domains)
	if err != nil {
		s.logger.Warn("check failed", zap.Strings("domains", domains), zap.Error(err))
		WriteError(w, http.StatusOK, err.Error())
		return
	}

	results, errs := checker.Split(outcomes)
	if len(errs) > 0 {
		s.logger.Warn("check failed", zap.Strings("domains", domains), zap.Errors("errors", errs))
		WriteError(w, http.StatusOK, multierr.Combine(errs...).Error())
		return
	}

	if len(results) == 1 {
		WriteJSON(w, http.StatusOK, results[0])
		return
	}
	WriteJSON(w, http.StatusOK, results)
}
