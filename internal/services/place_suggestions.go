package services

import (
	"strings"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
)

// ClampPlaceLimit maps a requested limit onto [1, MaxPlaceLimit], with
// DefaultPlaceLimit for zero or negative values.
func ClampPlaceLimit(limit int) int {
	switch {
	case limit <= 0:
		return constants.DefaultPlaceLimit
	case limit > constants.MaxPlaceLimit:
		return constants.MaxPlaceLimit
	default:
		return limit
	}
}

// FlattenPlaceSuggestions turns provider suggestions into a flat airport list.
// A city contributes its nested airports, an airport contributes itself.
// Entries without a three-letter code are dropped, repeated codes keep the
// first occurrence, and the result stops at limit entries. A limit of zero
// or less yields an empty list.
func FlattenPlaceSuggestions(suggestions []dtos.DuffelPlace, limit int) []dtos.Place {
	if limit <= 0 {
		return []dtos.Place{}
	}
	out := make([]dtos.Place, 0, limit)
	seen := make(map[string]struct{})

	add := func(p dtos.DuffelPlace, city *dtos.DuffelPlace) bool {
		code := strings.ToUpper(strings.TrimSpace(p.IATACode))
		if len(code) != 3 {
			return true
		}
		if _, dup := seen[code]; dup {
			return true
		}
		seen[code] = struct{}{}
		out = append(out, dtos.Place{
			City:    placeCity(p, city),
			Name:    p.Name,
			Code:    code,
			Country: p.IATACountryCode,
		})
		return len(out) < limit
	}

	for _, s := range suggestions {
		if len(out) >= limit {
			break
		}
		if strings.EqualFold(s.Type, "city") || len(s.Airports) > 0 {
			city := s
			for _, a := range s.Airports {
				if a.IATACountryCode == "" {
					a.IATACountryCode = s.IATACountryCode
				}
				if !add(a, &city) {
					break
				}
			}
			continue
		}
		add(s, s.City)
	}
	return out
}

func placeCity(p dtos.DuffelPlace, city *dtos.DuffelPlace) string {
	switch {
	case p.CityName != "":
		return p.CityName
	case city != nil && city.Name != "":
		return city.Name
	case p.City != nil && p.City.Name != "":
		return p.City.Name
	default:
		return p.Name
	}
}
