package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rpupo63/video-catalog-backend/catalog"
	"github.com/rpupo63/video-catalog-backend/config"
	"github.com/rpupo63/video-catalog-backend/database"
	"github.com/rpupo63/video-catalog-backend/services/identity"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, database database.Database, resolver identity.EmailResolver, exchanger identity.CodeExchanger) (Server, error) {
	startupTime := time.Now()

	accessLog := JSONHTTPLoggingMiddleware
	if cfg.IsDevelopment() {
		accessLog = ColoredHTTPLoggingMiddleware
	}

	router := NewRouter(database, resolver, exchanger,
		WithConfig(cfg),
		withStartupTime(startupTime),
		WithAccessLog(accessLog),
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      *config.Config
	startupTime time.Time
	accessLog   func(http.Handler) http.Handler
}

type RouterOption func(*router)

func WithConfig(c *config.Config) RouterOption {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) RouterOption {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

// WithAccessLog replaces the HTTP access log middleware; nil disables it.
func WithAccessLog(mw func(http.Handler) http.Handler) RouterOption {
	return func(r *router) {
		r.accessLog = mw
	}
}

// NewRouter builds the HTTP handler tree. Without a config option it runs with
// the built-in catalog rules and no administrator.
func NewRouter(database database.Database, resolver identity.EmailResolver, exchanger identity.CodeExchanger, opts ...RouterOption) *chi.Mux {
	rt := router{config: &config.Config{PublicSiteURL: "/"}, startupTime: time.Now()}
	rt.accessLog = JSONHTTPLoggingMiddleware
	for _, opt := range opts {
		if opt != nil {
			opt(&rt)
		}
	}

	rules := catalog.NewRules(rt.config.Catalog)

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(metricsMiddleware)
	if rt.accessLog != nil {
		chiRouter.Use(rt.accessLog)
	}

	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.config.AcceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"x-total-count", "x-limit", "x-offset"},
		AllowCredentials: allowsCredentials(rt.config.AcceptedOrigins),
		MaxAge:           300,
	}))

	gate := newAdminGate(resolver, rt.config.AdminEmail)
	handlers := initializeHandlers(database, rules, gate, exchanger, rt.config.SiteRoot(), rt.startupTime)

	setupRoutes(chiRouter, handlers, gate)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}

// allowsCredentials reports whether cookies may cross origins. An empty or
// wildcard origin list is answered with "*", which must not carry credentials.
func allowsCredentials(origins []string) bool {
	return len(origins) > 0 && !slices.Contains(origins, "*")
}
