package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"travel-desk/bookingcart/internal/auth"
	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
	"travel-desk/bookingcart/internal/models/entities"
	"travel-desk/bookingcart/internal/services"
)

// Mock FlightSearcher
type mockFlightSearcher struct {
	searchFunc func(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error)
}

func (m *mockFlightSearcher) Search(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error) {
	return m.searchFunc(ctx, req)
}

// Mock PlaceSuggester
type mockPlaceSuggester struct {
	suggestFunc func(ctx context.Context, query string, limit int) ([]dtos.Place, error)
}

func (m *mockPlaceSuggester) Suggest(ctx context.Context, query string, limit int) ([]dtos.Place, error) {
	return m.suggestFunc(ctx, query, limit)
}

// Mock ApplicationManager
type mockApplicationManager struct {
	createFunc func(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error)
	getFunc    func(ctx context.Context, id string) (*entities.VisaApplication, error)
	listFunc   func(ctx context.Context, status string) ([]entities.VisaApplication, error)
	updateFunc func(ctx context.Context, id string, req dtos.UpdateApplicationRequest) (*entities.VisaApplication, error)
	statsFunc  func(ctx context.Context) (int, map[string]int, error)
}

func (m *mockApplicationManager) Create(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error) {
	return m.createFunc(ctx, req)
}

func (m *mockApplicationManager) Get(ctx context.Context, id string) (*entities.VisaApplication, error) {
	return m.getFunc(ctx, id)
}

func (m *mockApplicationManager) List(ctx context.Context, status string) ([]entities.VisaApplication, error) {
	return m.listFunc(ctx, status)
}

func (m *mockApplicationManager) Update(ctx context.Context, id string, req dtos.UpdateApplicationRequest) (*entities.VisaApplication, error) {
	return m.updateFunc(ctx, id, req)
}

func (m *mockApplicationManager) Stats(ctx context.Context) (int, map[string]int, error) {
	return m.statsFunc(ctx)
}

// Mock ReceiptRenderer
type mockReceiptRenderer struct {
	renderFunc func(app *entities.VisaApplication) ([]byte, error)
}

func (m *mockReceiptRenderer) Render(app *entities.VisaApplication) ([]byte, error) {
	return m.renderFunc(app)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) dtos.ErrorResponse {
	t.Helper()
	var resp dtos.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestFlightSearchHandler_GetQuery(t *testing.T) {
	mockService := &mockFlightSearcher{
		searchFunc: func(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error) {
			if req.Origin != "LHR" || req.Adults != 2 || req.MaxPrice == nil || *req.MaxPrice != 300 || req.Stops != nil {
				t.Errorf("Unexpected request %+v", req)
			}
			return &services.FlightSearchResult{
				Flights: []dtos.NormalizedFlight{{ID: "off_1", Price: 250}},
				Total:   4,
				Cached:  true,
			}, nil
		},
	}

	handler := FlightSearchHandler(mockService)
	req := httptest.NewRequest(http.MethodGet, "/api/flights/search?origin=LHR&destination=JFK&departureDate=2026-11-02&adults=2&maxPrice=300&stops=any", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp dtos.FlightSearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Ok || resp.Meta.Count != 1 || resp.Meta.Total != 4 || !resp.Meta.Cached || resp.Meta.Source != constants.FlightSource {
		t.Errorf("Unexpected response %+v", resp)
	}
	if rr.Header().Get("X-Response-Time") == "" {
		t.Error("Expected X-Response-Time header")
	}
}

func TestFlightSearchHandler_PostBody(t *testing.T) {
	mockService := &mockFlightSearcher{
		searchFunc: func(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error) {
			if req.ReturnDate != "2026-11-09" || req.Sort != "price" {
				t.Errorf("Unexpected request %+v", req)
			}
			return &services.FlightSearchResult{Flights: []dtos.NormalizedFlight{}}, nil
		},
	}

	body := `{"origin":"LHR","destination":"JFK","departureDate":"2026-11-02","returnDate":"2026-11-09","sort":"price"}`
	req := httptest.NewRequest(http.MethodPost, "/api/flights/search", strings.NewReader(body))
	rr := httptest.NewRecorder()
	FlightSearchHandler(mockService).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestFlightSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		url      string
		wantCode int
	}{
		{"bad integer", nil, "/api/flights/search?adults=two", http.StatusBadRequest},
		{"not configured", common.ErrFlightSearchNotConfigured, "/api/flights/search", http.StatusInternalServerError},
		{"upstream", &common.DuffelError{Status: 422, Endpoint: "offer_requests", Message: "bad date"}, "/api/flights/search", 422},
		{"transport", &common.DuffelError{Endpoint: "offers", Message: "timeout"}, "/api/flights/search", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mockFlightSearcher{
				searchFunc: func(ctx context.Context, req dtos.FlightSearchRequest) (*services.FlightSearchResult, error) {
					return nil, tt.err
				},
			}
			rr := httptest.NewRecorder()
			FlightSearchHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if rr.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rr.Code)
			}
			if resp := decodeError(t, rr); resp.Ok || resp.Error == "" {
				t.Errorf("Unexpected body %+v", resp)
			}
		})
	}
}

func TestAirportsHandler(t *testing.T) {
	mockService := &mockPlaceSuggester{
		suggestFunc: func(ctx context.Context, query string, limit int) ([]dtos.Place, error) {
			if query != "lon" || limit != 3 {
				t.Errorf("Unexpected args %q %d", query, limit)
			}
			return []dtos.Place{{City: "London", Name: "Heathrow", Code: "LHR", Country: "GB"}}, nil
		},
	}

	rr := httptest.NewRecorder()
	AirportsHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/airports?q=lon&limit=3", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp dtos.AirportsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Ok || len(resp.Airports) != 1 || resp.Airports[0].Code != "LHR" {
		t.Errorf("Unexpected response %+v", resp)
	}

	rr = httptest.NewRecorder()
	AirportsHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/airports?query=lon&limit=x", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad limit, got %d", rr.Code)
	}
}

func newTestVisaService(t *testing.T) *services.VisaService {
	t.Helper()
	ds, err := common.LoadEmbeddedVisaDataset()
	if err != nil {
		t.Fatalf("Failed to load dataset: %v", err)
	}
	return services.NewVisaService(services.NewVisaTable(ds), nil)
}

func TestEligibilityHandler_MissingFields(t *testing.T) {
	handler := EligibilityHandler(newTestVisaService(t))

	req := httptest.NewRequest(http.MethodPost, "/api/visa/eligibility", strings.NewReader(`{"nationality":"US"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if !strings.Contains(resp.Error, "arrivalDate") || resp.Code != constants.ErrCodeValidation {
		t.Errorf("Unexpected error body %+v", resp)
	}
}

func TestEligibilityHandler_EmptyBody(t *testing.T) {
	rr := httptest.NewRecorder()
	EligibilityHandler(newTestVisaService(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/visa/eligibility", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestEligibilityHandler_Success(t *testing.T) {
	body := `{"nationality":"US","destination":"CA","purpose":"tourism","arrivalDate":"2026-12-03"}`
	rr := httptest.NewRecorder()
	EligibilityHandler(newTestVisaService(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/visa/eligibility", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp dtos.EligibilityResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Eligibility.Category != entities.CategoryVisaFree {
		t.Errorf("Expected Visa-free, got %q", resp.Eligibility.Category)
	}
}

func TestPassportVisaHandler(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/visa/passport/us", nil), "code", "us")
	rr := httptest.NewRecorder()
	PassportVisaHandler(newTestVisaService(t)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp dtos.PassportVisaResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Passport != "US" || resp.Buckets.VisaFree == nil || resp.Buckets.Required == nil {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestVisaCheckHandler_BadCode(t *testing.T) {
	rr := httptest.NewRecorder()
	VisaCheckHandler(newTestVisaService(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/visa/check?passport=USA&destination=CA", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestCreateApplicationHandler_StorageUnavailable(t *testing.T) {
	mockService := &mockApplicationManager{
		createFunc: func(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error) {
			return nil, common.ErrStorageUnavailable
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/visa/applications", strings.NewReader(`{"applicant":{"fullName":"A"}}`))
	rr := httptest.NewRecorder()
	CreateApplicationHandler(mockService).ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Fallback != constants.StorageFallbackLocal || resp.Code != constants.ErrCodeStorageUnavailable {
		t.Errorf("Unexpected error body %+v", resp)
	}
}

func TestCreateApplicationHandler_Success(t *testing.T) {
	mockService := &mockApplicationManager{
		createFunc: func(ctx context.Context, req dtos.CreateApplicationRequest) (*entities.VisaApplication, error) {
			return &entities.VisaApplication{ID: "app-1", Status: constants.StatusDraft, Applicant: req.Applicant}, nil
		},
	}

	body, _ := json.Marshal(dtos.CreateApplicationRequest{Applicant: entities.Applicant{FullName: "Ada", Email: "ada@example.com"}})
	rr := httptest.NewRecorder()
	CreateApplicationHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/visa/applications", bytes.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	var resp dtos.ApplicationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ID != "app-1" || resp.Application.Status != constants.StatusDraft {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestGetApplicationHandler_NotFound(t *testing.T) {
	mockService := &mockApplicationManager{
		getFunc: func(ctx context.Context, id string) (*entities.VisaApplication, error) {
			return nil, common.ErrApplicationNotFound
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/visa/applications/ghost", nil), "id", "ghost")
	rr := httptest.NewRecorder()
	GetApplicationHandler(mockService).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestApplicationReceiptHandler(t *testing.T) {
	mockService := &mockApplicationManager{
		getFunc: func(ctx context.Context, id string) (*entities.VisaApplication, error) {
			return &entities.VisaApplication{ID: id}, nil
		},
	}
	renderer := &mockReceiptRenderer{
		renderFunc: func(app *entities.VisaApplication) ([]byte, error) {
			return []byte("%PDF-1.3 fake"), nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/visa/applications/app-1/receipt", nil), "id", "app-1")
	rr := httptest.NewRecorder()
	ApplicationReceiptHandler(mockService, renderer).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("Expected PDF content type, got %s", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "visa-application-app-1.pdf") {
		t.Errorf("Unexpected Content-Disposition %s", rr.Header().Get("Content-Disposition"))
	}
}

func TestAdminUpdateApplicationHandler(t *testing.T) {
	mockService := &mockApplicationManager{
		updateFunc: func(ctx context.Context, id string, req dtos.UpdateApplicationRequest) (*entities.VisaApplication, error) {
			if id != "app-1" || req.Status == nil || *req.Status != "Approved" {
				t.Errorf("Unexpected update %s %+v", id, req)
			}
			return &entities.VisaApplication{ID: id, Status: constants.StatusApproved}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/visa/applications/app-1", strings.NewReader(`{"status":"Approved"}`))
	req = withURLParam(req, "id", "app-1")
	req = req.WithContext(auth.SetAdminClaims(req.Context(), &auth.StaticTokenClaims{}))
	rr := httptest.NewRecorder()
	AdminUpdateApplicationHandler(mockService).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestAdminListAndStatsHandlers(t *testing.T) {
	mockService := &mockApplicationManager{
		listFunc: func(ctx context.Context, status string) ([]entities.VisaApplication, error) {
			if status != "Submitted" {
				t.Errorf("Expected Submitted filter, got %q", status)
			}
			return []entities.VisaApplication{{ID: "a"}, {ID: "b"}}, nil
		},
		statsFunc: func(ctx context.Context) (int, map[string]int, error) {
			return 2, map[string]int{"Submitted": 2}, nil
		},
	}

	rr := httptest.NewRecorder()
	AdminListApplicationsHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/visa/applications?status=Submitted", nil))
	var list dtos.ApplicationListResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if list.Count != 2 {
		t.Errorf("Expected count 2, got %d", list.Count)
	}

	rr = httptest.NewRecorder()
	AdminStatsHandler(mockService).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/visa/stats", nil))
	var stats dtos.ApplicationStatsResponse
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.Total != 2 || stats.Counts["Submitted"] != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestAdminLoginHandler(t *testing.T) {
	signer := common.NewAdminSessionSigner("s3cret", common.NewCacheService(60, 120))
	handler := AdminLoginHandler("s3cret", signer, time.Hour)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"token":"nope"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"token":"s3cret"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp dtos.AdminLoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("Expected expiresIn 3600, got %d", resp.ExpiresIn)
	}
	if _, err := signer.Validate(resp.Token); err != nil {
		t.Errorf("Expected issued token to validate, got %v", err)
	}

	rr = httptest.NewRecorder()
	AdminLoginHandler("", nil, time.Hour).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"token":"x"}`)))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 without admin token, got %d", rr.Code)
	}
}

func TestHealthCheckHandler(t *testing.T) {
	checks := map[string]HealthCheck{
		"cache":   func(ctx context.Context) error { return nil },
		"storage": nil,
	}

	rr := httptest.NewRecorder()
	HealthCheckHandler(checks, time.Now().Add(-time.Minute)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp entities.HealthCheckResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Ok || resp.Services["storage"].Status != "disabled" {
		t.Errorf("Unexpected health %+v", resp)
	}

	checks["redis"] = func(ctx context.Context) error { return errors.New("connection refused") }
	rr = httptest.NewRecorder()
	HealthCheckHandler(checks, time.Now()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
}
