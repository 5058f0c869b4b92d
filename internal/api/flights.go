package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/services"
)

type FlightSearcher interface {
	Search(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error)
}

// FlightSearchHandler handles GET and POST /api/flights/search.
// GET reads query parameters, POST a JSON body with the same field names.
func FlightSearchHandler(svc FlightSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.FlightSearchRequest
		var err error
		if r.Method == http.MethodPost {
			err = decodeJSONBody(w, r, &req)
		} else {
			req, err = searchRequestFromQuery(r.URL.Query())
		}
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		result, err := svc.Search(r.Context(), req)
		if err != nil {
			respondWithError(w, initTime, err)
			return
		}

		respond(w, initTime, http.StatusOK, dtos.FlightSearchResponse{
			Ok:      true,
			Flights: result.Flights,
			Meta: dtos.FlightSearchMeta{
				Count:  len(result.Flights),
				Total:  result.Total,
				Source: constants.FlightSource,
				Cached: result.Cached,
			},
		})
	}
}

func searchRequestFromQuery(q url.Values) (dtos.FlightSearchRequest, error) {
	req := dtos.FlightSearchRequest{
		Origin:        q.Get("origin"),
		Destination:   q.Get("destination"),
		DepartureDate: q.Get("departureDate"),
		ReturnDate:    q.Get("returnDate"),
		CabinClass:    q.Get("cabinClass"),
		Airline:       q.Get("airline"),
		DepartureTime: q.Get("departureTime"),
		Sort:          q.Get("sort"),
	}

	ints := []struct {
		name   string
		target *int
	}{
		{"adults", &req.Adults},
		{"children", &req.Children},
		{"infants", &req.Infants},
		{"limit", &req.Limit},
	}
	for _, f := range ints {
		v, err := optionalInt(q, f.name)
		if err != nil {
			return req, err
		}
		if v != nil {
			*f.target = *v
		}
	}

	var err error
	if req.MaxPrice, err = optionalInt(q, "maxPrice"); err != nil {
		return req, err
	}
	if req.Stops, err = optionalInt(q, "stops"); err != nil {
		return req, err
	}
	return req, nil
}

// optionalInt treats a missing value or "any" as unset.
func optionalInt(q url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" || strings.EqualFold(raw, "any") {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, common.NewValidationError("%s must be an integer", name)
	}
	return &v, nil
}
