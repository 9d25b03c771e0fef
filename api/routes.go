package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes registers the public catalog reads, the gated mutations and the
// operational endpoints.
func setupRoutes(r chi.Router, handlers *routeHandlers, gate adminGate) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/auth/callback", handlers.authHandler.callback())

	r.Route("/api", func(r chi.Router) {
		r.Get("/auth/admin", handlers.authHandler.adminStatus())

		r.Get("/videos", handlers.videoHandler.listVideos())
		r.Get("/videos/{videoID}", handlers.videoHandler.getVideo())

		r.Group(func(r chi.Router) {
			r.Use(gate.authenticate)

			r.Post("/videos", handlers.videoHandler.createVideo())
			r.Patch("/videos", handlers.videoHandler.updateVideo())
			r.Patch("/videos/{videoID}", handlers.videoHandler.updateVideo())
			r.Delete("/videos", handlers.videoHandler.deleteVideo())
			r.Delete("/videos/{videoID}", handlers.videoHandler.deleteVideo())
		})
	})
}
