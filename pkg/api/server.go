// Package api serves the pipeline over HTTP.
//
// Clients create a session, attach a natal chart to it, then request
// reports against that chart. The session keeps a timing engine warm so
// repeated transit requests reuse cached stays.
//
//	POST   /v1/sessions                 create (optionally with a chart)
//	GET    /v1/sessions/{id}            session and chart
//	DELETE /v1/sessions/{id}
//	PUT    /v1/sessions/{id}/chart      replace the chart
//	GET    /v1/sessions/{id}/dasha      ?at=
//	GET    /v1/sessions/{id}/transits   ?at=&timing=true
//	GET    /v1/sessions/{id}/calendar   ?year=&month=
//	GET    /v1/positions                ?at=
//	GET    /healthz
//	GET    /metrics                     when a metrics handler is set
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/jyotish/pkg/buildinfo"
	"github.com/matzehuels/jyotish/pkg/observability"
	"github.com/matzehuels/jyotish/pkg/pipeline"
	"github.com/matzehuels/jyotish/pkg/session"
)

// DefaultCleanupInterval is how often expired sessions are swept.
const DefaultCleanupInterval = 10 * time.Minute

// Options holds optional server configuration.
type Options struct {
	// SessionTTL is the lifetime of new sessions. Zero uses session.DefaultTTL.
	SessionTTL time.Duration

	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler

	// CleanupInterval is how often [Server.Run] sweeps expired sessions.
	// Zero uses DefaultCleanupInterval.
	CleanupInterval time.Duration
}

// Server is the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   session.Store
	logger  *log.Logger
	ttl     time.Duration
	cleanup time.Duration
	router  chi.Router
}

// New creates a server. A nil logger falls back to log.Default().
func New(runner *pipeline.Runner, store session.Store, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		store:   store,
		logger:  logger,
		ttl:     opts.SessionTTL,
		cleanup: opts.CleanupInterval,
	}
	if s.ttl <= 0 {
		s.ttl = session.DefaultTTL
	}
	if s.cleanup <= 0 {
		s.cleanup = DefaultCleanupInterval
	}
	s.router = s.routes(opts.Metrics)
	return s
}

func (s *Server) routes(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string         `json:"status"`
			Build  buildinfo.Info `json:"build"`
		}{"ok", buildinfo.Get()})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/positions", s.handlePositions)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/chart", s.handlePutChart)
			r.Get("/dasha", s.handleDasha)
			r.Get("/transits", s.handleTransits)
			r.Get("/calendar", s.handleCalendar)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, sweeping expired sessions in
// the background, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.runCleanupLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.Cleanup(ctx)
			if err != nil {
				s.logger.Warn("session cleanup failed", "err", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("removed expired sessions", "count", n)
			}
		}
	}
}

// instrument reports each request to the HTTP hooks. Responses are
// labelled by route pattern, not raw path.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}
