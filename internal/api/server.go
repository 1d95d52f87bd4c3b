// Package api provides the HTTP API server and handlers for the Lexile
// reading assistant.
package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// slowRequestTimeout bounds uploads and upstream-heavy requests.
const slowRequestTimeout = 3 * time.Minute

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string // CORS origins; empty reflects the request origin
	RequestsPerMin int      // Per-IP limit; non-positive disables limiting
	Fonts          fs.FS    // Typeface files served under /fonts/; nil disables
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	components    Components
	authenticator Authenticator
	fonts         fs.FS
	router        *chi.Mux
	api           huma.API
	rateLimiter   *RateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, components Components, authenticator Authenticator, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		services:      services,
		components:    components,
		authenticator: authenticator,
		fonts:         opts.Fonts,
		router:        chi.NewRouter(),
		rateLimiter:   NewRateLimiter(opts.RequestsPerMin),
		logger:        logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Lexile API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, e.g. for generating the OpenAPI document.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown implements do.Shutdownable.
func (s *Server) Shutdown() error {
	s.rateLimiter.Stop()
	return nil
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(corsMiddleware(opts.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
	s.router.Use(withExtendedTimeout(slowRequestTimeout, "/api/summarize", "/api/tts"))
	s.router.Use(authMiddleware(s.authenticator))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerChatRoutes()
	s.registerSearchRoutes()
	s.registerDocumentRoutes()
	s.registerSpeechRoutes()
	s.registerWordTimingRoutes()
	s.registerPreferenceRoutes()
	s.registerScreeningRoutes()
	s.registerReaderRoutes()
	s.registerFontRoutes()
}
