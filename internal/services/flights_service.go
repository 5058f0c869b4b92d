package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
)

const (
	flightSearchTTL = 5 * time.Minute
	childAge        = 10
)

var (
	iataCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
	cabinClasses    = map[string]bool{"economy": true, "premium_economy": true, "business": true, "first": true}
)

// FlightProvider is the part of the Duffel client the search services use.
type FlightProvider interface {
	Configured() bool
	SearchOffers(ctx context.Context, search dtos.DuffelOfferRequest, limit int) ([]dtos.DuffelOffer, int, error)
	GetPlaceSuggestions(ctx context.Context, query string) ([]dtos.DuffelPlace, int, error)
}

// FlightSearchResult is the filtered view plus the size of the unfiltered set.
type FlightSearchResult struct {
	Flights []dtos.NormalizedFlight
	Total   int
	Cached  bool
}

type FlightsService struct {
	Provider     FlightProvider
	Cache        common.CacheInterface
	Metrics      *metrics.MetricsRegistry
	Options      NormalizeOptions
	DefaultLimit int
	MaxLimit     int

	group singleflight.Group
}

func NewFlightsService(provider FlightProvider, cache common.CacheInterface, m *metrics.MetricsRegistry, cfg config.FlightsConfig) *FlightsService {
	return &FlightsService{
		Provider: provider,
		Cache:    cache,
		Metrics:  m,
		Options: NormalizeOptions{
			PriceMarkup:    cfg.PriceMarkup,
			DurationSource: DurationSource(cfg.DurationSource),
		},
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	}
}

// NormalizeSearchRequest validates req in place, filling defaults.
func (svc *FlightsService) NormalizeSearchRequest(req *dtos.FlightSearchRequest) error {
	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	req.DepartureDate = strings.TrimSpace(req.DepartureDate)
	req.ReturnDate = strings.TrimSpace(req.ReturnDate)
	req.CabinClass = strings.ToLower(strings.TrimSpace(req.CabinClass))
	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	req.DepartureTime = strings.ToLower(strings.TrimSpace(req.DepartureTime))

	if !iataCodePattern.MatchString(req.Origin) {
		return common.NewValidationError("origin must be a three-letter IATA code")
	}
	if !iataCodePattern.MatchString(req.Destination) {
		return common.NewValidationError("destination must be a three-letter IATA code")
	}
	if req.Origin == req.Destination {
		return common.NewValidationError("origin and destination must differ")
	}

	departure, err := time.Parse(arrivalDateLayout, req.DepartureDate)
	if err != nil {
		return common.NewValidationError("departureDate must be formatted YYYY-MM-DD")
	}
	if req.ReturnDate != "" {
		ret, err := time.Parse(arrivalDateLayout, req.ReturnDate)
		if err != nil {
			return common.NewValidationError("returnDate must be formatted YYYY-MM-DD")
		}
		if ret.Before(departure) {
			return common.NewValidationError("returnDate must not be before departureDate")
		}
	}

	if req.Adults <= 0 {
		req.Adults = 1
	}
	if req.Children < 0 || req.Infants < 0 {
		return common.NewValidationError("passenger counts must not be negative")
	}
	if req.Infants > req.Adults {
		return common.NewValidationError("each infant must travel with an adult")
	}
	if req.Adults+req.Children+req.Infants > 9 {
		return common.NewValidationError("at most 9 passengers per search")
	}

	if req.CabinClass == "" {
		req.CabinClass = "economy"
	}
	if !cabinClasses[req.CabinClass] {
		return common.NewValidationError("unknown cabinClass %q", req.CabinClass)
	}

	if req.Limit <= 0 {
		req.Limit = svc.DefaultLimit
	}
	if svc.MaxLimit > 0 && req.Limit > svc.MaxLimit {
		req.Limit = svc.MaxLimit
	}

	if !ValidSortKey(req.Sort) {
		return common.NewValidationError("unknown sort %q", req.Sort)
	}
	if !ValidDepartureBucket(req.DepartureTime) {
		return common.NewValidationError("unknown departureTime %q", req.DepartureTime)
	}
	if req.Stops != nil && *req.Stops < 0 {
		return common.NewValidationError("stops must not be negative")
	}
	return nil
}

// Search returns normalized offers for req, served from cache when a
// previous identical search is still fresh. Concurrent identical misses
// share one upstream round trip.
func (svc *FlightsService) Search(ctx context.Context, req dtos.FlightSearchRequest) (*FlightSearchResult, error) {
	if svc.Provider == nil || !svc.Provider.Configured() {
		return nil, common.ErrFlightSearchNotConfigured
	}
	if err := svc.NormalizeSearchRequest(&req); err != nil {
		return nil, err
	}

	key := flightSearchCacheKey(req)
	all, cached, err := svc.cachedFlights(key)
	if err != nil {
		logging.Warn("Discarding unreadable cached search", "key", key, "error", err)
	}

	if !cached {
		v, err, _ := svc.group.Do(key, func() (interface{}, error) {
			return svc.fetch(ctx, key, req)
		})
		if err != nil {
			return nil, err
		}
		all = v.([]dtos.NormalizedFlight)
	}

	filters := FlightFilters{
		MaxPrice:      req.MaxPrice,
		Stops:         req.Stops,
		Airline:       req.Airline,
		DepartureTime: req.DepartureTime,
	}
	return &FlightSearchResult{
		Flights: ApplyFilters(all, filters, req.Sort),
		Total:   len(all),
		Cached:  cached,
	}, nil
}

func (svc *FlightsService) cachedFlights(key string) ([]dtos.NormalizedFlight, bool, error) {
	if svc.Cache == nil {
		return nil, false, nil
	}
	raw, found := svc.Cache.Get(key)
	if !found {
		svc.cacheMiss(constants.CachePrefixFlightSearch)
		return nil, false, nil
	}
	var flights []dtos.NormalizedFlight
	if err := json.Unmarshal(raw, &flights); err != nil {
		svc.Cache.Delete(key)
		svc.cacheMiss(constants.CachePrefixFlightSearch)
		return nil, false, err
	}
	svc.cacheHit(constants.CachePrefixFlightSearch)
	return flights, true, nil
}

func (svc *FlightsService) fetch(ctx context.Context, key string, req dtos.FlightSearchRequest) ([]dtos.NormalizedFlight, error) {
	offers, status, err := svc.Provider.SearchOffers(ctx, BuildOfferRequest(req), req.Limit)
	if err != nil {
		logging.Error("Flight search failed",
			"origin", req.Origin,
			"destination", req.Destination,
			"status", status,
			"error", err,
		)
		return nil, err
	}

	flights, report := NormalizeOffers(offers, svc.Options)
	if len(flights) > req.Limit {
		flights = flights[:req.Limit]
	}
	svc.recordNormalization(report)

	logging.Info("Flight search completed",
		"origin", req.Origin,
		"destination", req.Destination,
		"received", report.Received,
		"normalized", report.Normalized,
		"dropped", report.Dropped,
	)

	if svc.Cache != nil {
		if payload, err := json.Marshal(flights); err == nil {
			svc.Cache.Set(key, payload, flightSearchTTL)
		}
	}
	return flights, nil
}

// BuildOfferRequest maps a validated search onto the provider's request
// body. Children are sent with a nominal age, infants as lap infants.
func BuildOfferRequest(req dtos.FlightSearchRequest) dtos.DuffelOfferRequest {
	slices := []dtos.DuffelSliceRequest{{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
	}}
	if req.ReturnDate != "" {
		slices = append(slices, dtos.DuffelSliceRequest{
			Origin:        req.Destination,
			Destination:   req.Origin,
			DepartureDate: req.ReturnDate,
		})
	}

	passengers := make([]dtos.DuffelPassenger, 0, req.Adults+req.Children+req.Infants)
	for i := 0; i < req.Adults; i++ {
		passengers = append(passengers, dtos.DuffelPassenger{Type: "adult"})
	}
	for i := 0; i < req.Children; i++ {
		age := childAge
		passengers = append(passengers, dtos.DuffelPassenger{Age: &age})
	}
	for i := 0; i < req.Infants; i++ {
		passengers = append(passengers, dtos.DuffelPassenger{Type: "infant_without_seat"})
	}

	return dtos.DuffelOfferRequest{Data: dtos.DuffelOfferRequestData{
		Slices:     slices,
		Passengers: passengers,
		CabinClass: req.CabinClass,
	}}
}

func flightSearchCacheKey(req dtos.FlightSearchRequest) string {
	return fmt.Sprintf("%s%s_%s_%s_%s_%d_%d_%d_%s_%d",
		constants.CachePrefixFlightSearch,
		req.Origin, req.Destination, req.DepartureDate, req.ReturnDate,
		req.Adults, req.Children, req.Infants, req.CabinClass, req.Limit,
	)
}

func (svc *FlightsService) recordNormalization(report NormalizeReport) {
	if svc.Metrics == nil {
		return
	}
	svc.Metrics.OffersNormalizedTotal.Add(float64(report.Normalized))
	for reason, n := range report.Dropped {
		svc.Metrics.OffersDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

func (svc *FlightsService) cacheHit(prefix constants.CachePrefix) {
	if svc.Metrics != nil {
		svc.Metrics.CacheHitsTotal.WithLabelValues(string(prefix)).Inc()
	}
}

func (svc *FlightsService) cacheMiss(prefix constants.CachePrefix) {
	if svc.Metrics != nil {
		svc.Metrics.CacheMissesTotal.WithLabelValues(string(prefix)).Inc()
	}
}
