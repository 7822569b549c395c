package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/store"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8533"

	// maxBodySize caps request bodies. Component trees are small;
	// anything near this limit is abuse or a mistake.
	maxBodySize = 1 << 20

	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Options configures a Server. The zero value works: memory-backed
// store and cache, default address and rate limit, default logger.
type Options struct {
	// Addr is the listen address.
	Addr string

	// RateLimit is the sustained requests per second allowed per
	// client. Zero means 10.
	RateLimit float64

	// RateBurst is the per-client burst size. Zero means 20.
	RateBurst int

	// Store holds shareable documents.
	Store store.Store

	// Cache backs the render pipeline and the /d page cache.
	Cache cache.Cache

	// Render supplies defaults for requests that omit options.
	Render RenderDefaults

	Logger *log.Logger
}

// RenderDefaults are applied to render requests that leave the
// corresponding field unset.
type RenderDefaults struct {
	IntervalMS int64
	NoHover    bool
	LinkTarget string
	Seed       uint64
}

// Server is the chatglass HTTP server.
type Server struct {
	addr     string
	runner   *pipeline.Runner
	store    store.Store
	cache    cache.Cache
	keyer    cache.Keyer
	defaults RenderDefaults
	logger   *log.Logger
	limiter  *clientLimiter
	router   chi.Router
	http     *http.Server
}

// New creates a Server with its routes registered.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 20
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Render.Seed == 0 {
		opts.Render.Seed = pipeline.DefaultSeed
	}
	if opts.Render.IntervalMS == 0 {
		opts.Render.IntervalMS = pipeline.DefaultIntervalMS
	}

	keyer := cache.NewDefaultKeyer()
	s := &Server{
		addr:     opts.Addr,
		runner:   pipeline.NewRunner(opts.Cache, keyer, opts.Logger),
		store:    opts.Store,
		cache:    opts.Cache,
		keyer:    keyer,
		defaults: opts.Render,
		logger:   opts.Logger,
		limiter:  newClientLimiter(opts.RateLimit, opts.RateBurst),
	}
	s.router = s.routes()
	return s
}

// routes builds the chi router. The health check sits outside the rate
// limit so probes never compete with clients for tokens.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/render", s.handleRender)
			r.Route("/documents", func(r chi.Router) {
				r.Post("/", s.handleCreateDocument)
				r.Get("/{id}", s.handleGetDocument)
				r.Delete("/{id}", s.handleDeleteDocument)
			})
		})

		r.Get("/d/{id}", s.handlePage)
	})

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Start listens and serves until ctx is cancelled, then drains
// in-flight requests before returning. A nil return means a clean
// shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	s.logger.Info("Server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.Close(shutdownCtx)
}

// Close releases the runner, cache and store.
func (s *Server) Close(ctx context.Context) error {
	s.limiter.stop()
	err := s.runner.Close()
	if serr := s.store.Close(ctx); err == nil {
		err = serr
	}
	return err
}
