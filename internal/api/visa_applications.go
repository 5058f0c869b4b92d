package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"travel-desk/bookingcart/internal/auth"
	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/models/entities"
)

type ApplicationManager interface {
	Create(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error)
	Get(ctx context.Context, id string) (*entities.VisaApplication, error)
	List(ctx context.Context, status string) ([]entities.VisaApplication, error)
	Update(ctx context.Context, id string, req dtos.UpdateApplicationRequest) (*entities.VisaApplication, error)
	Stats(ctx context.Context) (int, map[string]int, error)
}

type ReceiptRenderer interface {
	Render(app *entities.VisaApplication) ([]byte, error)
}

// CreateApplicationHandler handles POST /api/visa/applications
func CreateApplicationHandler(svc ApplicationManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.CreateApplicationRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			respondWithError(w, initTime, err)
			return
		}

		app, err := svc.Create(r.Context(), req)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusCreated, dtos.ApplicationResponse{Ok: true, ID: app.ID, Application: *app})
	}
}

// GetApplicationHandler handles GET /api/visa/applications/{id}
func GetApplicationHandler(svc ApplicationManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		app, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, dtos.ApplicationResponse{Ok: true, ID: app.ID, Application: *app})
	}
}

// ApplicationReceiptHandler handles GET /api/visa/applications/{id}/receipt
func ApplicationReceiptHandler(svc ApplicationManager, receipts ReceiptRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		app, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		pdf, err := receipts.Render(app)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=visa-application-%s.pdf", app.ID))
		w.Header().Set("X-Response-Time", common.GetResponseTime(initTime))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdf); err != nil {
			logging.Warn("Failed to write receipt", "id", app.ID, "error", err)
		}
	}
}

// AdminListApplicationsHandler handles GET /api/admin/visa/applications?status=
func AdminListApplicationsHandler(svc ApplicationManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		apps, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, dtos.ApplicationListResponse{Ok: true, Count: len(apps), Applications: apps})
	}
}

// AdminUpdateApplicationHandler handles PATCH /api/admin/visa/applications/{id}
func AdminUpdateApplicationHandler(svc ApplicationManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.UpdateApplicationRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			respondWithError(w, initTime, err)
			return
		}

		app, err := svc.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		if claims := auth.GetAdminClaims(r.Context()); claims != nil {
			logging.Info("Admin updated application",
				"id", app.ID,
				"status", app.Status,
				"admin", claims.Subject(),
				"auth_source", claims.Source(),
			)
		}
		respond(w, initTime, http.StatusOK, dtos.ApplicationResponse{Ok: true, ID: app.ID, Application: *app})
	}
}

// AdminStatsHandler handles GET /api/admin/visa/stats
func AdminStatsHandler(svc ApplicationManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		total, counts, err := svc.Stats(r.Context())
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, dtos.ApplicationStatsResponse{Ok: true, Total: total, Counts: counts})
	}
}
