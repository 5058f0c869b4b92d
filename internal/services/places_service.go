package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"travel-desk/bookingcart/internal/common"
	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/metrics"
	"travel-desk/bookingcart/internal/models/dtos"
)

const (
	placesTTL           = time.Hour
	minPlaceQueryLength = 2
)

type PlacesService struct {
	Provider FlightProvider
	Cache    common.CacheInterface
	Metrics  *metrics.MetricsRegistry

	group singleflight.Group
}

func NewPlacesService(provider FlightProvider, cache common.CacheInterface, m *metrics.MetricsRegistry) *PlacesService {
	return &PlacesService{Provider: provider, Cache: cache, Metrics: m}
}

// Suggest returns at most limit airports matching query. Queries shorter
// than two characters return an empty list without calling the provider.
func (svc *PlacesService) Suggest(ctx context.Context, query string, limit int) ([]dtos.Place, error) {
	query = strings.TrimSpace(query)
	limit = ClampPlaceLimit(limit)
	if len([]rune(query)) < minPlaceQueryLength {
		return []dtos.Place{}, nil
	}
	if svc.Provider == nil || !svc.Provider.Configured() {
		return nil, common.ErrFlightSearchNotConfigured
	}

	key := string(constants.CachePrefixPlaces) + strings.ToLower(query)
	places, found := svc.cached(key)
	if !found {
		v, err, _ := svc.group.Do(key, func() (interface{}, error) {
			return svc.load(ctx, key, query)
		})
		if err != nil {
			return nil, err
		}
		places = v.([]dtos.Place)
	}

	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// load rechecks the cache through GetOrSet before calling the provider.
func (svc *PlacesService) load(ctx context.Context, key, query string) ([]dtos.Place, error) {
	fetch := func() ([]byte, error) {
		suggestions, status, err := svc.Provider.GetPlaceSuggestions(ctx, query)
		if err != nil {
			logging.Error("Place suggestions failed", "query", query, "status", status, "error", err)
			return nil, err
		}
		return json.Marshal(FlattenPlaceSuggestions(suggestions, constants.MaxPlaceLimit))
	}

	var (
		raw []byte
		err error
	)
	if svc.Cache != nil {
		raw, err = svc.Cache.GetOrSet(key, placesTTL, fetch)
	} else {
		raw, err = fetch()
	}
	if err != nil {
		return nil, err
	}

	var places []dtos.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, fmt.Errorf("failed to decode place suggestions: %w", err)
	}
	return places, nil
}

func (svc *PlacesService) cached(key string) ([]dtos.Place, bool) {
	if svc.Cache == nil {
		return nil, false
	}
	raw, found := svc.Cache.Get(key)
	var places []dtos.Place
	if found && json.Unmarshal(raw, &places) == nil {
		if svc.Metrics != nil {
			svc.Metrics.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixPlaces)).Inc()
		}
		return places, true
	}
	if svc.Metrics != nil {
		svc.Metrics.CacheMissesTotal.WithLabelValues(string(constants.CachePrefixPlaces)).Inc()
	}
	return nil, false
}
