// Package api provides the SiteWatch HTTP server.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/monitor"
	"github.com/sitewatch-io/sitewatch/internal/repo"
	"github.com/sitewatch-io/sitewatch/internal/version"
)

// Poller triggers on-demand polls through the same pipeline the
// scheduler uses: single entities synchronously, full cycles for the
// poll-all endpoint.
type Poller interface {
	PollDevice(ctx context.Context, id string) (*monitor.PollOutcome, error)
	PollCamera(ctx context.Context, id string) (*monitor.PollOutcome, error)
	TriggerAll()
}

// ReadinessChecker verifies that the server is ready to serve traffic.
// Returns nil if ready, an error describing why not otherwise.
type ReadinessChecker func(ctx context.Context) error

// Server is the SiteWatch HTTP server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	repo       *repo.Repo
	poller     Poller
	bus        *event.Bus
	ready      ReadinessChecker
	logger     *zap.Logger
}

// New creates a server with its middleware chain and routes mounted.
func New(addr string, r *repo.Repo, poller Poller, bus *event.Bus, ready ReadinessChecker, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:    mux,
		repo:   r,
		poller: poller,
		bus:    bus,
		ready:  ready,
		logger: logger,
	}
	s.registerRoutes()

	opsPaths := map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

	// Middleware chain: outermost listed first.
	handler := chain(mux,
		recoverPanics(logger),
		instrument(logger, opsPaths),
		baseHeaders,
		limitByIP(100, 200, opsPaths),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes() {
	// Unversioned operational endpoints.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Versioned API endpoints.
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/v1/poll", s.handlePollAll)

	s.mux.HandleFunc("GET /api/v1/devices", s.handleListDevices)
	s.mux.HandleFunc("POST /api/v1/devices", s.handleCreateDevice)
	s.mux.HandleFunc("GET /api/v1/devices/{id}", s.handleGetDevice)
	s.mux.HandleFunc("DELETE /api/v1/devices/{id}", s.handleDeleteDevice)
	s.mux.HandleFunc("POST /api/v1/devices/{id}/poll", s.handlePollDevice)

	s.mux.HandleFunc("GET /api/v1/cameras", s.handleListCameras)
	s.mux.HandleFunc("POST /api/v1/cameras", s.handleCreateCamera)
	s.mux.HandleFunc("GET /api/v1/cameras/{id}", s.handleGetCamera)
	s.mux.HandleFunc("DELETE /api/v1/cameras/{id}", s.handleDeleteCamera)
	s.mux.HandleFunc("POST /api/v1/cameras/{id}/poll", s.handlePollCamera)

	s.mux.HandleFunc("GET /api/v1/alerts", s.handleListAlerts)
	s.mux.HandleFunc("POST /api/v1/alerts", s.handleCreateAlert)
	s.mux.HandleFunc("POST /api/v1/alerts/{id}/ack", s.handleAckAlert)
	s.mux.HandleFunc("DELETE /api/v1/alerts/{id}", s.handleDeleteAlert)
}

// Start begins serving HTTP requests. Blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the middleware-wrapped handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version map[string]string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "sitewatch",
		Version: version.Map(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
