package common

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
)

func newTestDuffel(t *testing.T, handler http.HandlerFunc) (*DuffelAPIService, *metrics.MetricsRegistry) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	svc := NewDuffelAPIService(config.DuffelConfig{
		BaseURL: server.URL + "/",
		Token:   "duffel_test_token",
		Version: "v2",
		Timeout: 5 * time.Second,
	}, m)
	return svc, m
}

func TestDuffelAPIService_SearchOffers(t *testing.T) {
	svc, m := newTestDuffel(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer duffel_test_token" {
			t.Errorf("Unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Duffel-Version"); got != "v2" {
			t.Errorf("Unexpected Duffel-Version header %q", got)
		}

		switch r.URL.Path {
		case "/air/offer_requests":
			if r.Method != http.MethodPost || r.URL.Query().Get("return_offers") != "false" {
				t.Errorf("Unexpected offer request call %s %s", r.Method, r.URL)
			}
			var body dtos.DuffelOfferRequest
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &body); err != nil || len(body.Data.Slices) != 1 {
				t.Errorf("Unexpected offer request body %s", raw)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"orq_123"}}`))
		case "/air/offers":
			q := r.URL.Query()
			if q.Get("offer_request_id") != "orq_123" || q.Get("limit") != "5" || q.Get("sort") != "total_amount" {
				t.Errorf("Unexpected offers query %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"data":[{"id":"off_1","total_amount":"120.00","total_currency":"GBP","slices":[]},{"id":"off_2","total_amount":99.5}]}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	search := dtos.DuffelOfferRequest{Data: dtos.DuffelOfferRequestData{
		Slices:     []dtos.DuffelSliceRequest{{Origin: "LHR", Destination: "JFK", DepartureDate: "2026-11-02"}},
		Passengers: []dtos.DuffelPassenger{{Type: "adult"}},
	}}
	offers, status, err := svc.SearchOffers(context.Background(), search, 5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}
	if len(offers) != 2 || offers[1].TotalAmount != "99.5" {
		t.Errorf("Unexpected offers %+v", offers)
	}

	if got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("offer_requests", "201")); got != 1 {
		t.Errorf("Expected 1 offer_requests call recorded, got %v", got)
	}
}

func TestDuffelAPIService_UpstreamError(t *testing.T) {
	svc, _ := newTestDuffel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":[{"title":"Invalid","message":"Departure date must be in the future","code":"validation_error"}]}`))
	})

	_, status, err := svc.CreateOfferRequest(context.Background(), dtos.DuffelOfferRequest{})
	if status != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", status)
	}
	var duffelErr *DuffelError
	if !errors.As(err, &duffelErr) {
		t.Fatalf("Expected DuffelError, got %v", err)
	}
	if duffelErr.Status != http.StatusUnprocessableEntity || duffelErr.Message != "Departure date must be in the future" {
		t.Errorf("Unexpected error %+v", duffelErr)
	}
}

func TestDuffelAPIService_TransportError(t *testing.T) {
	svc := NewDuffelAPIService(config.DuffelConfig{BaseURL: "http://127.0.0.1:1", Token: "t", Timeout: time.Second}, nil)

	_, status, err := svc.GetPlaceSuggestions(context.Background(), "lon")
	var duffelErr *DuffelError
	if !errors.As(err, &duffelErr) || duffelErr.Status != 0 || status != 0 {
		t.Errorf("Expected transport DuffelError with status 0, got %v (%d)", err, status)
	}
}

func TestDuffelAPIService_GetPlaceSuggestions(t *testing.T) {
	svc, _ := newTestDuffel(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/places/suggestions" || r.URL.Query().Get("query") != "new york" {
			t.Errorf("Unexpected request %s", r.URL)
		}
		w.Write([]byte(`{"data":[{"type":"city","name":"New York","airports":[{"type":"airport","iata_code":"JFK","name":"John F. Kennedy"}]}]}`))
	})

	places, _, err := svc.GetPlaceSuggestions(context.Background(), "new york")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(places) != 1 || len(places[0].Airports) != 1 || places[0].Airports[0].IATACode != "JFK" {
		t.Errorf("Unexpected places %+v", places)
	}
}

func TestDuffelAPIService_Configured(t *testing.T) {
	var nilSvc *DuffelAPIService
	if nilSvc.Configured() {
		t.Error("Expected nil service to be unconfigured")
	}
	if NewDuffelAPIService(config.DuffelConfig{Token: "  "}, nil).Configured() {
		t.Error("Expected blank token to be unconfigured")
	}
}
