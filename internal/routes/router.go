package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"travel-desk/bookingcart/internal/api"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/middleware"
)

func RegisterRoutes(deps *api.Dependencies, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	if deps.Config.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Response-Time", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(deps.Checks, upSince))

	RegisterAPIRoutes(r, deps)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
