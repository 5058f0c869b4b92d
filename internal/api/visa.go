package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/services"
)

// VisaCheckHandler handles GET /api/visa/check?passport=&destination=
func VisaCheckHandler(svc *services.VisaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		c, err := svc.Check(r.URL.Query().Get("passport"), r.URL.Query().Get("destination"))
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, dtos.VisaCheckResponse{Ok: true, Classification: c})
	}
}

// PassportVisaHandler handles GET /api/visa/passport/{code}
func PassportVisaHandler(svc *services.VisaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		overview, err := svc.PassportOverview(chi.URLParam(r, "code"))
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, overview)
	}
}

// CountriesHandler handles GET /api/visa/countries
func CountriesHandler(svc *services.VisaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		respond(w, initTime, http.StatusOK, dtos.CountriesResponse{Ok: true, Countries: svc.Countries()})
	}
}

// EligibilityHandler handles POST /api/visa/eligibility
func EligibilityHandler(svc *services.VisaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.EligibilityRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			respondWithError(w, initTime, err)
			return
		}

		e, err := svc.CheckEligibility(req)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}
		respond(w, initTime, http.StatusOK, dtos.EligibilityResponse{Ok: true, Eligibility: e})
	}
}
