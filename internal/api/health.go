package api

import (
	"context"
	"net/http"
	"time"

	"travel-desk/bookingcart/internal/models/entities"
)

// HealthCheck reports nil when a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// HealthCheckHandler handles GET /healthCheck
//
// Checks with a nil func are reported as "disabled" and do not affect the
// overall status.
func HealthCheckHandler(checks map[string]HealthCheck, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus, len(checks))
		overallStatus := "ok"
		for name, check := range checks {
			if check == nil {
				services[name] = entities.ServiceStatus{Status: "disabled", Details: "not configured"}
				continue
			}
			if err := check(ctx); err != nil {
				services[name] = entities.ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
				continue
			}
			services[name] = entities.ServiceStatus{Status: "ok", Details: "reachable"}
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		respond(w, initTime, code, entities.HealthCheckResponse{
			Ok:       overallStatus == "ok",
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		})
	}
}
