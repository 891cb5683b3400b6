// Package web serves cleaned GDP datasets over HTTP: a JSON API for
// metadata, rows and aggregates, a run endpoint that loads a new dataset,
// and an HTML dashboard.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/gdpdash/internal/config"
	"github.com/JonMunkholm/gdpdash/internal/contract"
	"github.com/JonMunkholm/gdpdash/internal/engine"
	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/logging"
	"github.com/JonMunkholm/gdpdash/internal/web/middleware"
)

// Runner runs one load-clean-describe pass.
type Runner interface {
	Run(ctx context.Context, req loader.Request, c *contract.Contract) (*engine.Result, error)
}

// dataset is the result currently being served.
type dataset struct {
	runID    string
	source   string
	loadedAt time.Time
	result   *engine.Result
}

// Server is the HTTP server for the GDP dashboard.
type Server struct {
	runner   Runner
	registry *loader.Registry
	contract *contract.Contract
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiter  *runLimiter

	// mu guards current; each run builds its own result and swaps it in.
	mu      sync.RWMutex
	current *dataset
}

// NewServer creates a Server. Runs use c, or the built-in GDP contract when
// c is nil.
func NewServer(runner Runner, registry *loader.Registry, c *contract.Contract, cfg *config.Config) *Server {
	if c == nil {
		c = contract.GDP()
	}
	s := &Server{
		runner:   runner,
		registry: registry,
		contract: c,
		cfg:      cfg,
		router:   chi.NewRouter(),
		limiter:  newRunLimiter(cfg.Server.MaxConcurrentRuns, cfg.Server.RunWait),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.corsHandler())
	s.router.Use(securityHeaders)
}

// corsHandler allows the configured origins to call the API.
func (s *Server) corsHandler() func(http.Handler) http.Handler {
	origins := s.cfg.Security.AllowedOrigins
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", middleware.APIKeyHeader},
		ExposedHeaders:   []string{middleware.RunIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.Handler(opts)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/formats", s.handleFormats)
		r.Get("/metadata", s.handleMetadata)
		r.Get("/dimensions", s.handleDimensions)
		r.Get("/rows", s.handleRows)
		r.Get("/aggregate", s.handleAggregate)
		r.With(middleware.APIKeyAuth(s.cfg.Security.APIKeys), middleware.RunID).Post("/run", s.handleRun)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active runs finish first.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.limiter.Active(); active > 0 {
		slog.Info("waiting for runs to complete", "active", active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("runs did not complete in time", "error", err)
		}
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Load runs req and, on success, serves its result. It returns the run id
// assigned to the attempt.
func (s *Server) Load(ctx context.Context, req loader.Request) (string, *engine.Result, error) {
	ds, err := s.load(ctx, req, req.Source())
	if err != nil {
		return logging.RunID(ctx), nil, err
	}
	return ds.runID, ds.result, nil
}

// load runs req under a run id and swaps the result in. name is the source
// shown to clients.
func (s *Server) load(ctx context.Context, req loader.Request, name string) (*dataset, error) {
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}

	res, err := s.runner.Run(ctx, req, s.contract)
	if err != nil {
		return nil, err
	}

	ds := &dataset{runID: runID, source: name, loadedAt: time.Now().UTC(), result: res}
	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
	return ds, nil
}

// snapshot returns the dataset being served, or nil.
func (s *Server) snapshot() *dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
