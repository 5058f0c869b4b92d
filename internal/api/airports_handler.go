package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/models/dtos"
)

type PlaceSuggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]dtos.Place, error)
}

// AirportsHandler handles GET /api/airports?query=&limit=
func AirportsHandler(svc PlaceSuggester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		query := r.URL.Query().Get("query")
		if query == "" {
			query = r.URL.Query().Get("q")
		}

		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				respondWithError(w, initTime, common.NewValidationError("limit must be an integer"))
				return
			}
			limit = v
		}

		places, err := svc.Suggest(r.Context(), query, limit)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		respond(w, initTime, http.StatusOK, dtos.AirportsResponse{Ok: true, Airports: places})
	}
}
