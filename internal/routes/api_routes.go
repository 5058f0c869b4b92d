package routes

import (
	"github.com/go-chi/chi/v5"

	"travel-desk/bookingcart/internal/api"
	"travel-desk/bookingcart/internal/middleware"
)

// RegisterAPIRoutes registers every /api route. Search, eligibility,
// application creation and admin login are rate limited per client IP.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {
	svcs := deps.Services
	adminAuth := middleware.AdminAuthMiddleware(deps.Config.Admin.Token, deps.Sessions)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.InFlightMiddleware(deps.Metrics, "api"))

		// Upstream-backed and write routes
		r.Group(func(limited chi.Router) {
			limited.Use(deps.RateLimiter.Middleware)

			limited.Get("/flights/search", api.FlightSearchHandler(svcs.Flights))
			limited.Post("/flights/search", api.FlightSearchHandler(svcs.Flights))
			limited.Get("/airports", api.AirportsHandler(svcs.Places))

			limited.Post("/visa/eligibility", api.EligibilityHandler(svcs.Visa))
			limited.Post("/visa/applications", api.CreateApplicationHandler(svcs.Applications))

			limited.Post("/admin/login", api.AdminLoginHandler(deps.Config.Admin.Token, deps.Sessions, deps.Config.Admin.SessionTTL))
		})

		// Dataset lookups
		r.Get("/visa/check", api.VisaCheckHandler(svcs.Visa))
		r.Get("/visa/passport/{code}", api.PassportVisaHandler(svcs.Visa))
		r.Get("/visa/countries", api.CountriesHandler(svcs.Visa))
		r.Get("/visa/applications/{id}", api.GetApplicationHandler(svcs.Applications))
		r.Get("/visa/applications/{id}/receipt", api.ApplicationReceiptHandler(svcs.Applications, svcs.Receipts))

		// Admin
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(adminAuth)
			admin.Post("/logout", api.AdminLogoutHandler(deps.Sessions))
			admin.Get("/visa/applications", api.AdminListApplicationsHandler(svcs.Applications))
			admin.Patch("/visa/applications/{id}", api.AdminUpdateApplicationHandler(svcs.Applications))
			admin.Get("/visa/stats", api.AdminStatsHandler(svcs.Applications))
		})
	})
}
