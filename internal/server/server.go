// Package server implements the dagflow HTTP read API.
//
// # Routes
//
//	GET  /healthz
//	GET  /metrics
//	GET  /api/v1/definitions
//	GET  /api/v1/definitions/{name}
//	GET  /api/v1/definitions/{name}/diagnostics
//	GET  /api/v1/workflows
//	GET  /api/v1/workflows/{workflow}/view?definition=NAME
//	POST /api/v1/workflows/{workflow}/view
//	GET  /api/v1/workflows/{workflow}/render?definition=NAME&format=svg
//	GET  /api/v1/workflows/{workflow}/nodes/{node}/dependencies?definition=NAME
//
// Definitions are loaded by name from the configured [source.Source]. The
// POST form builds the definition in the request body instead. Built views
// and rendered artifacts are cached through the [pipeline.Runner].
//
// Errors use the envelope from [httputil.WriteError]; the status follows
// the error code (400 for bad input, 404 for unknown definitions).
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/dagflow/pkg/pipeline"
	"github.com/matzehuels/dagflow/pkg/source"
	"github.com/matzehuels/dagflow/pkg/workflow"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second

	// maxMemoGraphs bounds the number of built graphs kept for dependency
	// queries before the memo is reset.
	maxMemoGraphs = 256

	// maxBodyBytes bounds POSTed definitions.
	maxBodyBytes = 8 << 20
)

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Defaults seeds the pipeline options of every request. Query
	// parameters override individual fields.
	Defaults pipeline.Options

	// Metrics, when set, is served on /metrics and registered as the
	// global observability hooks.
	Metrics *Metrics

	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	opts   Options
	runner *pipeline.Runner
	source source.Source
	memo   *workflow.Memo
	logger *log.Logger
	router chi.Router
}

// New creates a server. The runner provides caching; src resolves
// definition names.
func New(runner *pipeline.Runner, src source.Source, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = defaultAddr
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if err := opts.Defaults.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.Register()
	}

	s := &Server{
		opts:   opts,
		runner: runner,
		source: src,
		memo:   workflow.NewMemo(opts.Defaults.BuildOptions()),
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/definitions", func(r chi.Router) {
			r.Get("/", s.handleListDefinitions)
			r.Get("/{name}", s.handleGetDefinition)
			r.Get("/{name}/diagnostics", s.handleDiagnostics)
		})
		r.Route("/workflows", func(r chi.Router) {
			r.Get("/", s.handleListWorkflows)
			r.Route("/{workflow}", func(r chi.Router) {
				r.Get("/view", s.handleView)
				r.Post("/view", s.handleBuildView)
				r.Get("/render", s.handleRender)
				r.Get("/nodes/{node}/dependencies", s.handleDependencies)
			})
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.opts.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
