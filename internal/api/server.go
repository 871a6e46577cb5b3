// Package api provides the HTTP API for the reading log.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/readlog/internal/store"
	"github.com/listenupapp/readlog/internal/validation"
)

// Options tunes the router.
type Options struct {
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.Store
	services  *Services
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		store:     st,
		services:  services,
		router:    chi.NewRouter(),
		validator: validation.New(),
		logger:    logger,
	}
	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("readlog API", "1.0.0")
	humaConfig.Info.Description = "Reading-log reconciliation, import and export"
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerFinishedRoutes()
	s.registerImportRoutes()
	s.registerExportRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", userIDHeader, requestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:         300,
	}))
}
