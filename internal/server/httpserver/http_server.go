// Package httpserver wires the preview server: routes, middleware, the live
// reload hub and the listener lifecycle.
package httpserver

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/metrics"
	"git.home.luguber.info/inful/livedoc/internal/server/handlers"
	"git.home.luguber.info/inful/livedoc/internal/server/livereload"
	smw "git.home.luguber.info/inful/livedoc/internal/server/middleware"
)

// Source is the live document behind the server.
type Source interface {
	handlers.Document
	handlers.Status
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address; ":0" picks a free port.
	Addr string

	// LiveReload enables /livereload and the page client script.
	LiveReload bool

	// MetricsPath mounts Metrics there. Empty disables the endpoint.
	MetricsPath string
	Metrics     http.Handler

	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Server serves one live document.
type Server struct {
	opts    Options
	hub     *livereload.Hub
	handler http.Handler

	srv *http.Server
	ln  net.Listener
}

// New constructs the server and its routes. Nothing listens until Start.
func New(src Source, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	adapter := errors.NewHTTPErrorAdapter(opts.Logger)
	s := &Server{opts: opts}

	docs := handlers.NewDocumentHandlers(src, opts.LiveReload, adapter)
	monitoring := handlers.NewMonitoringHandlers(src, adapter)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", docs.HandlePage)
	mux.HandleFunc("GET /style.css", docs.HandleStyle)
	mux.HandleFunc("GET /cells/{key}", docs.HandleCell)
	mux.HandleFunc("GET /healthz", monitoring.HandleHealthCheck)
	if opts.LiveReload {
		s.hub = livereload.NewHub(opts.Recorder)
		mux.Handle("GET /livereload", s.hub)
	}
	if opts.MetricsPath != "" && opts.Metrics != nil {
		mux.Handle("GET "+opts.MetricsPath, opts.Metrics)
	}
	mux.HandleFunc("/", docs.HandleNotFound)

	s.handler = smw.Chain(opts.Logger, adapter)(mux)
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Broadcast announces a new document fingerprint to live reload clients.
func (s *Server) Broadcast(fingerprint string) {
	if s.hub != nil {
		s.hub.Broadcast(fingerprint)
	}
}

// Start binds the listener and serves in the background. Binding errors are
// returned before anything is served.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return errors.ListenError(s.opts.Addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			s.opts.Logger.Error("preview server error", logfields.Error(err))
		}
	}()
	s.opts.Logger.Info("Preview server listening", logfields.Addr(s.Addr()),
		slog.String("url", fmt.Sprintf("http://%s/", s.Addr())))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.opts.Addr
}

// Stop disconnects live reload clients and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	s.opts.Logger.Info("Preview server stopped")
	return nil
}
