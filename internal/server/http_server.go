// Package server exposes the daemon's HTTP surface: health, metrics,
// the stats report and the transport adapter endpoints that bridge chat
// commands onto the roster engine.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/rosterd/internal/config"
	"git.home.luguber.info/inful/rosterd/internal/journal"
	"git.home.luguber.info/inful/rosterd/internal/logfields"
	"git.home.luguber.info/inful/rosterd/internal/metrics"
	"git.home.luguber.info/inful/rosterd/internal/notify"
	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// Server manages the HTTP endpoints.
type Server struct {
	engine    *roster.Engine
	journal   journal.Journal
	notifier  notify.Notifier
	recorder  metrics.Recorder
	cfg       *config.Config
	startTime time.Time

	httpServer *http.Server
	// PrometheusHandler serves the metrics endpoint when set.
	PrometheusHandler http.Handler
}

// Options carries optional collaborators for the server.
type Options struct {
	Journal           journal.Journal
	Notifier          notify.Notifier
	Recorder          metrics.Recorder
	PrometheusHandler http.Handler
}

// New constructs the HTTP server wiring instance.
func New(cfg *config.Config, engine *roster.Engine, opts Options) *Server {
	s := &Server{
		engine:            engine,
		journal:           opts.Journal,
		notifier:          opts.Notifier,
		recorder:          opts.Recorder,
		cfg:               cfg,
		startTime:         time.Now(),
		PrometheusHandler: opts.PrometheusHandler,
	}
	if s.notifier == nil {
		s.notifier = notify.Noop{}
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	return s
}

// Handler builds the request mux. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/healthz", s.handleHealth) // Kubernetes-style alias

	// Metrics endpoint
	if s.cfg.Metrics.Enabled && s.PrometheusHandler != nil {
		mux.Handle(s.cfg.Metrics.Path, s.PrometheusHandler)
	}

	// Stats report
	mux.HandleFunc("GET /stats", s.handleStats)

	// Transport adapter endpoints
	mux.HandleFunc("POST /roster/status", s.handleSetStatus)
	mux.HandleFunc("POST /roster/interaction", s.handleInteraction)
	mux.HandleFunc("POST /roster/reset", s.handleReset)

	if s.journal != nil {
		mux.HandleFunc("GET /history", s.handleHistory)
	}

	return mux
}

// Start binds the listener and serves requests until Stop.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.HTTP.Addr, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", logfields.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
