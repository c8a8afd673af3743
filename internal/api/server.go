// Package api provides the HTTP API server and handlers for the humidor.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/metrics"
	"github.com/humidorapp/humidor-server/internal/ratelimit"
	"github.com/humidorapp/humidor-server/internal/sse"
	"github.com/humidorapp/humidor-server/internal/store"
)

// bearerSecurity marks an operation as requiring a PASETO bearer token.
var bearerSecurity = []map[string][]string{{"bearer": {}}}

// Options carries server settings that do not come from a dependency.
type Options struct {
	Version     string
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      store.Store
	services   *Services
	tokens     *auth.TokenService
	sseManager *sse.Manager
	metrics    *metrics.Metrics
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	st store.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	m *metrics.Metrics,
	limiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		store:      st,
		services:   services,
		tokens:     tokens,
		sseManager: sseManager,
		metrics:    m,
		limiter:    limiter,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Humidor API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack. Compression is left out so
// the event stream flushes immediately.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(metricsMiddleware(s.metrics))
	s.router.Use(authMiddleware(s.tokens))
	s.router.Use(rateLimitMiddleware(s.limiter, s.metrics, s.logger))
}

// registerRoutes wires every huma operation plus the plain handlers.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerIdentityRoutes()
	s.registerCigarRoutes()
	s.registerTastingRoutes()
	s.registerInsightRoutes()
	s.registerImportRoutes()

	s.router.Get("/api/v1/events", sse.NewHandler(s.sseManager, resolveUser, s.logger).ServeHTTP)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}
