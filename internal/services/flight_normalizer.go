package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
)

// DurationSource selects where an itinerary's duration comes from.
type DurationSource string

const (
	// DurationFromSlice parses the slice's ISO-8601 duration and falls back
	// to DefaultDurationMinutes.
	DurationFromSlice DurationSource = "slice"
	// DurationFromSliceThenTimestamps tries the slice duration, then the
	// minutes between first departure and last arrival, then the default.
	DurationFromSliceThenTimestamps DurationSource = "slice_then_timestamps"
)

// Drop reasons reported by NormalizeOffers.
const (
	DropMissingID       = "missing_id"
	DropMissingSlices   = "missing_slices"
	DropMissingSegments = "missing_segments"
	DropDuplicate       = "duplicate"
	DropMalformed       = "malformed"
)

type NormalizeOptions struct {
	PriceMarkup    float64
	DurationSource DurationSource
}

// NormalizeReport counts what happened to a batch of offers.
type NormalizeReport struct {
	Received   int
	Normalized int
	Dropped    map[string]int
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T(?:(\d+)H)?(?:(\d+)M)?`)

var offerTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseISODuration returns the whole minutes in an ISO-8601 duration such as
// "PT2H30M". Missing hour or minute groups count as zero. Input that does
// not match returns DefaultDurationMinutes.
func ParseISODuration(s string) int {
	minutes, ok := parseISODuration(s)
	if !ok {
		return constants.DefaultDurationMinutes
	}
	return minutes
}

func parseISODuration(s string) (int, bool) {
	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes, true
}

// ClockTime returns the "HH:MM" wall clock written in an ISO timestamp
// without any timezone conversion, or "" when there is none.
func ClockTime(ts string) string {
	idx := strings.IndexAny(ts, "T ")
	if idx < 0 || len(ts) < idx+6 {
		return ""
	}
	clock := ts[idx+1 : idx+6]
	if !isDigit(clock[0]) || !isDigit(clock[1]) || clock[2] != ':' || !isDigit(clock[3]) || !isDigit(clock[4]) {
		return ""
	}
	return clock
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func parseOfferTime(ts string) (time.Time, bool) {
	for _, layout := range offerTimeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func minutesBetween(from, to string) (int, bool) {
	start, ok := parseOfferTime(from)
	if !ok {
		return 0, false
	}
	end, ok := parseOfferTime(to)
	if !ok {
		return 0, false
	}
	minutes := int(math.Round(end.Sub(start).Minutes()))
	if minutes <= 0 {
		return 0, false
	}
	return minutes, true
}

// ParsePrice reads a decimal amount, ignoring currency symbols and thousands
// separators. Anything unreadable is 0.
func ParsePrice(raw string) float64 {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// DisplayPrice applies the markup and rounds half away from zero.
func DisplayPrice(raw string, markup float64) int {
	if markup <= 0 {
		markup = 1
	}
	return int(math.Round(ParsePrice(raw) * markup))
}

// ResolveCarrier prefers the owner, then the first segment's marketing
// carrier, then its operating carrier. With none it returns the placeholder.
func ResolveCarrier(offer dtos.DuffelOffer) dtos.Airline {
	candidates := []*dtos.DuffelCarrier{offer.Owner}
	if len(offer.Slices) > 0 && len(offer.Slices[0].Segments) > 0 {
		first := offer.Slices[0].Segments[0]
		candidates = append(candidates, first.MarketingCarrier, first.OperatingCarrier)
	}

	for _, c := range candidates {
		if c == nil || strings.TrimSpace(c.IATACode) == "" {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(c.IATACode))
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = code
		}
		logoURL := c.LogoSymbolURL
		if logoURL == "" {
			logoURL = c.LogoLockupURL
		}
		return dtos.Airline{Code: code, Name: name, Logo: logoGlyph(code), LogoURL: logoURL}
	}

	return dtos.Airline{
		Code: constants.PlaceholderCarrierCode,
		Name: constants.PlaceholderCarrierName,
		Logo: logoGlyph(constants.PlaceholderCarrierCode),
	}
}

func logoGlyph(code string) string {
	if len(code) > 2 {
		return code[:2]
	}
	return code
}

type sliceSummary struct {
	origin      string
	destination string
	departTime  string
	arriveTime  string
	durationMin int
	stops       int
	segments    []dtos.SegmentDetail
}

func summarizeSlice(slice dtos.DuffelSlice, direction string, source DurationSource) sliceSummary {
	first := slice.Segments[0]
	last := slice.Segments[len(slice.Segments)-1]

	duration, ok := parseISODuration(slice.Duration)
	if !ok && source == DurationFromSliceThenTimestamps {
		duration, ok = minutesBetween(first.DepartingAt, last.ArrivingAt)
	}
	if !ok {
		duration = constants.DefaultDurationMinutes
	}

	origin := slice.Origin.IATACode
	if origin == "" {
		origin = first.Origin.IATACode
	}
	destination := slice.Destination.IATACode
	if destination == "" {
		destination = last.Destination.IATACode
	}

	details := make([]dtos.SegmentDetail, 0, len(slice.Segments))
	for _, seg := range slice.Segments {
		details = append(details, segmentDetail(seg, direction))
	}

	return sliceSummary{
		origin:      origin,
		destination: destination,
		departTime:  ClockTime(first.DepartingAt),
		arriveTime:  ClockTime(last.ArrivingAt),
		durationMin: duration,
		stops:       len(slice.Segments) - 1,
		segments:    details,
	}
}

func segmentDetail(seg dtos.DuffelSegment, direction string) dtos.SegmentDetail {
	d := dtos.SegmentDetail{
		Direction:  direction,
		From:       seg.Origin.IATACode,
		To:         seg.Destination.IATACode,
		DepartTime: ClockTime(seg.DepartingAt),
		ArriveTime: ClockTime(seg.ArrivingAt),
		DepartAt:   seg.DepartingAt,
		ArriveAt:   seg.ArrivingAt,
	}

	carrier := seg.MarketingCarrier
	if carrier == nil || carrier.IATACode == "" {
		carrier = seg.OperatingCarrier
	}
	if carrier != nil && carrier.IATACode != "" {
		d.CarrierCode = carrier.IATACode
		d.CarrierName = carrier.Name
		if seg.MarketingCarrierFlightNumber != "" {
			d.FlightNumber = carrier.IATACode + seg.MarketingCarrierFlightNumber
		}
	} else {
		d.CarrierCode = constants.PlaceholderCarrierCode
	}

	if seg.Aircraft != nil {
		d.Aircraft = seg.Aircraft.Name
	}
	if minutes, ok := parseISODuration(seg.Duration); ok {
		d.DurationMin = minutes
	}
	return d
}

// NormalizeOffer flattens one offer. It reports false, with a drop reason,
// when the offer has no id, no slices or an empty outbound slice.
func NormalizeOffer(offer dtos.DuffelOffer, opts NormalizeOptions) (dtos.NormalizedFlight, bool) {
	flight, reason := normalizeOffer(offer, opts)
	return flight, reason == ""
}

func normalizeOffer(offer dtos.DuffelOffer, opts NormalizeOptions) (dtos.NormalizedFlight, string) {
	if offer.Malformed {
		return dtos.NormalizedFlight{}, DropMalformed
	}
	if strings.TrimSpace(offer.ID) == "" {
		return dtos.NormalizedFlight{}, DropMissingID
	}
	if len(offer.Slices) == 0 {
		return dtos.NormalizedFlight{}, DropMissingSlices
	}
	if len(offer.Slices[0].Segments) == 0 {
		return dtos.NormalizedFlight{}, DropMissingSegments
	}

	outbound := summarizeSlice(offer.Slices[0], "outbound", opts.DurationSource)

	flight := dtos.NormalizedFlight{
		ID:          offer.ID,
		Airline:     ResolveCarrier(offer),
		Origin:      outbound.origin,
		Destination: outbound.destination,
		DepartTime:  outbound.departTime,
		ArriveTime:  outbound.arriveTime,
		DurationMin: outbound.durationMin,
		Stops:       outbound.stops,
		Price:       DisplayPrice(string(offer.TotalAmount), opts.PriceMarkup),
		Currency:    strings.ToUpper(offer.TotalCurrency),
		Segments:    outbound.segments,
	}

	// A malformed return slice leaves the flight one-way rather than dropping it.
	if len(offer.Slices) > 1 && len(offer.Slices[1].Segments) > 0 {
		inbound := summarizeSlice(offer.Slices[1], "return", opts.DurationSource)
		flight.ReturnDepartTime = inbound.departTime
		flight.ReturnArriveTime = inbound.arriveTime
		flight.ReturnDurationMin = &inbound.durationMin
		flight.ReturnStops = &inbound.stops
		flight.Segments = append(flight.Segments, inbound.segments...)
	}

	return flight, ""
}

// NormalizeOffers flattens a batch, keeping the first normalized record per
// offer id and preserving input order.
func NormalizeOffers(offers []dtos.DuffelOffer, opts NormalizeOptions) ([]dtos.NormalizedFlight, NormalizeReport) {
	report := NormalizeReport{Received: len(offers), Dropped: map[string]int{}}
	flights := make([]dtos.NormalizedFlight, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))

	for _, offer := range offers {
		flight, reason := normalizeOffer(offer, opts)
		if reason != "" {
			report.Dropped[reason]++
			continue
		}
		if _, dup := seen[flight.ID]; dup {
			report.Dropped[DropDuplicate]++
			continue
		}
		seen[flight.ID] = struct{}{}
		flights = append(flights, flight)
	}

	report.Normalized = len(flights)
	return flights, report
}
