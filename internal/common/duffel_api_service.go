package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
)

const maxErrorBodyBytes = 64 << 10

type DuffelAPIService struct {
	BaseURL string
	Token   string
	Version string
	Client  *http.Client
	Metrics *metrics.MetricsRegistry
}

func NewDuffelAPIService(cfg config.DuffelConfig, m *metrics.MetricsRegistry) *DuffelAPIService {
	return &DuffelAPIService{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Token:   cfg.Token,
		Version: cfg.Version,
		Client:  &http.Client{Timeout: cfg.Timeout},
		Metrics: m,
	}
}

// Configured reports whether a provider token is present.
func (svc *DuffelAPIService) Configured() bool {
	return svc != nil && strings.TrimSpace(svc.Token) != ""
}

func (svc *DuffelAPIService) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, svc.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+svc.Token)
	req.Header.Set("Duffel-Version", svc.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends req and returns the raw body of a 2xx answer. Anything else comes
// back as a *DuffelError carrying the upstream status.
func (svc *DuffelAPIService) do(req *http.Request, label string) ([]byte, int, error) {
	start := time.Now()
	resp, err := svc.Client.Do(req)
	svc.observe(label, resp, start)
	if err != nil {
		return nil, 0, &DuffelError{Endpoint: label, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := upstreamErrorMessage(body, resp.StatusCode)
		logging.Warn("Duffel request failed",
			"endpoint", label,
			"status", resp.StatusCode,
			"message", msg,
		)
		return nil, resp.StatusCode, &DuffelError{Status: resp.StatusCode, Endpoint: label, Message: msg}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s response: %w", label, err)
	}
	return body, resp.StatusCode, nil
}

func (svc *DuffelAPIService) doGET(ctx context.Context, endpoint, label string) ([]byte, int, error) {
	req, err := svc.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	return svc.do(req, label)
}

func (svc *DuffelAPIService) doPost(ctx context.Context, endpoint, label string, payload interface{}) ([]byte, int, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return nil, 0, err
	}
	req, err := svc.newRequest(ctx, http.MethodPost, endpoint, buf)
	if err != nil {
		return nil, 0, err
	}
	return svc.do(req, label)
}

func (svc *DuffelAPIService) observe(label string, resp *http.Response, start time.Time) {
	if svc.Metrics == nil {
		return
	}
	status := "error"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	svc.Metrics.UpstreamRequestsTotal.WithLabelValues(label, status).Inc()
	svc.Metrics.UpstreamRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

// CreateOfferRequest registers a search and returns the offer request id.
func (svc *DuffelAPIService) CreateOfferRequest(ctx context.Context, search dtos.DuffelOfferRequest) (string, int, error) {
	body, status, err := svc.doPost(ctx, "/air/offer_requests?return_offers=false", "offer_requests", search)
	if err != nil {
		return "", status, err
	}

	var r dtos.DuffelOfferRequestResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", status, fmt.Errorf("failed to decode offer request response: %w", err)
	}
	if r.Data.ID == "" {
		return "", status, fmt.Errorf("offer request response carried no id")
	}
	return r.Data.ID, status, nil
}

// ListOffers fetches up to limit offers for an offer request, cheapest first.
func (svc *DuffelAPIService) ListOffers(ctx context.Context, offerRequestID string, limit int) ([]dtos.DuffelOffer, int, error) {
	q := url.Values{}
	q.Set("offer_request_id", offerRequestID)
	q.Set("sort", "total_amount")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, status, err := svc.doGET(ctx, "/air/offers?"+q.Encode(), "offers")
	if err != nil {
		return nil, status, err
	}

	offers, err := DecodeOffers(body)
	if err != nil {
		return nil, status, err
	}
	return offers, status, nil
}

// SearchOffers runs the two-step offer request then offer list flow.
func (svc *DuffelAPIService) SearchOffers(ctx context.Context, search dtos.DuffelOfferRequest, limit int) ([]dtos.DuffelOffer, int, error) {
	id, status, err := svc.CreateOfferRequest(ctx, search)
	if err != nil {
		return nil, status, err
	}
	return svc.ListOffers(ctx, id, limit)
}

func (svc *DuffelAPIService) GetPlaceSuggestions(ctx context.Context, query string) ([]dtos.DuffelPlace, int, error) {
	q := url.Values{}
	q.Set("query", query)

	body, status, err := svc.doGET(ctx, "/places/suggestions?"+q.Encode(), "places_suggestions")
	if err != nil {
		return nil, status, err
	}

	var r dtos.DuffelPlaceSuggestionsResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, status, fmt.Errorf("failed to decode place suggestions: %w", err)
	}
	return r.Data, status, nil
}

func upstreamErrorMessage(body []byte, status int) string {
	var r dtos.DuffelErrorResponse
	if err := json.Unmarshal(body, &r); err == nil && len(r.Errors) > 0 {
		e := r.Errors[0]
		if e.Message != "" {
			return e.Message
		}
		if e.Title != "" {
			return e.Title
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}
