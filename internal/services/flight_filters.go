package services

import (
	"sort"
	"strings"

	"travel-desk/bookingcart/internal/models/dtos"
)

const (
	SortPrice     = "price"
	SortDuration  = "duration"
	SortDeparture = "departure"

	BucketMorning   = "morning"
	BucketAfternoon = "afternoon"
	BucketEvening   = "evening"

	filterAny = "any"
)

// FlightFilters narrows a result list. Zero values and "any" disable a filter.
type FlightFilters struct {
	MaxPrice      *int
	Stops         *int
	Airline       string
	DepartureTime string
}

// ValidSortKey reports whether key is empty or a known sort key.
func ValidSortKey(key string) bool {
	switch strings.ToLower(key) {
	case "", SortPrice, SortDuration, SortDeparture:
		return true
	}
	return false
}

// ValidDepartureBucket reports whether bucket is empty, "any" or a known bucket.
func ValidDepartureBucket(bucket string) bool {
	switch strings.ToLower(bucket) {
	case "", filterAny, BucketMorning, BucketAfternoon, BucketEvening:
		return true
	}
	return false
}

// DepartureBucket places an "HH:MM" clock into morning [05:00,12:00),
// afternoon [12:00,18:00) or evening (18:00 onwards and before 05:00).
// Unreadable clocks return "".
func DepartureBucket(clock string) string {
	minutes, ok := clockMinutes(clock)
	if !ok {
		return ""
	}
	switch {
	case minutes >= 5*60 && minutes < 12*60:
		return BucketMorning
	case minutes >= 12*60 && minutes < 18*60:
		return BucketAfternoon
	default:
		return BucketEvening
	}
}

func clockMinutes(clock string) (int, bool) {
	if len(clock) != 5 || clock[2] != ':' {
		return 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if !isDigit(clock[i]) {
			return 0, false
		}
	}
	h := int(clock[0]-'0')*10 + int(clock[1]-'0')
	m := int(clock[3]-'0')*10 + int(clock[4]-'0')
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func matchFilters(f dtos.NormalizedFlight, filters FlightFilters) bool {
	if filters.MaxPrice != nil && f.Price > *filters.MaxPrice {
		return false
	}
	if filters.Stops != nil && f.Stops != *filters.Stops {
		return false
	}
	if airline := strings.TrimSpace(filters.Airline); airline != "" && !strings.EqualFold(airline, filterAny) {
		if !strings.EqualFold(airline, f.Airline.Code) {
			return false
		}
	}
	if bucket := strings.ToLower(strings.TrimSpace(filters.DepartureTime)); bucket != "" && bucket != filterAny {
		if DepartureBucket(f.DepartTime) != bucket {
			return false
		}
	}
	return true
}

// ApplyFilters returns a new list holding the flights that pass every filter,
// stably sorted by sortKey. An empty or unknown sortKey keeps input order.
// The input slice is never modified.
func ApplyFilters(flights []dtos.NormalizedFlight, filters FlightFilters, sortKey string) []dtos.NormalizedFlight {
	out := make([]dtos.NormalizedFlight, 0, len(flights))
	for _, f := range flights {
		if matchFilters(f, filters) {
			out = append(out, f)
		}
	}

	var less func(a, b dtos.NormalizedFlight) bool
	switch strings.ToLower(sortKey) {
	case SortPrice:
		less = func(a, b dtos.NormalizedFlight) bool { return a.Price < b.Price }
	case SortDuration:
		less = func(a, b dtos.NormalizedFlight) bool { return a.DurationMin < b.DurationMin }
	case SortDeparture:
		// "HH:MM" orders lexicographically; unknown clocks ("") sort first.
		less = func(a, b dtos.NormalizedFlight) bool { return a.DepartTime < b.DepartTime }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
