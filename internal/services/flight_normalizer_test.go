package services

import (
	"testing"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
)

func segment(from, to, dep, arr string, carrier *dtos.DuffelCarrier) dtos.DuffelSegment {
	return dtos.DuffelSegment{
		Origin:           dtos.DuffelPlace{IATACode: from},
		Destination:      dtos.DuffelPlace{IATACode: to},
		DepartingAt:      dep,
		ArrivingAt:       arr,
		MarketingCarrier: carrier,
	}
}

func simpleOffer(id string) dtos.DuffelOffer {
	return dtos.DuffelOffer{
		ID:            id,
		TotalAmount:   "199.50",
		TotalCurrency: "usd",
		Owner:         &dtos.DuffelCarrier{IATACode: "BA", Name: "British Airways"},
		Slices: []dtos.DuffelSlice{{
			Duration: "PT2H30M",
			Segments: []dtos.DuffelSegment{
				segment("LHR", "CDG", "2026-11-02T07:15:00", "2026-11-02T09:45:00", nil),
			},
		}},
	}
}

func TestNormalizeOffer_SingleSegment(t *testing.T) {
	flight, ok := NormalizeOffer(simpleOffer("off_1"), NormalizeOptions{PriceMarkup: 1})
	if !ok {
		t.Fatal("Expected offer to normalize")
	}

	if flight.DurationMin != 150 {
		t.Errorf("Expected durationMin 150, got %d", flight.DurationMin)
	}
	if flight.Stops != 0 {
		t.Errorf("Expected 0 stops, got %d", flight.Stops)
	}
	if flight.Price != 200 {
		t.Errorf("Expected price 200, got %d", flight.Price)
	}
	if flight.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", flight.Currency)
	}
	if flight.Origin != "LHR" || flight.Destination != "CDG" {
		t.Errorf("Expected LHR-CDG, got %s-%s", flight.Origin, flight.Destination)
	}
	if flight.DepartTime != "07:15" || flight.ArriveTime != "09:45" {
		t.Errorf("Unexpected times %s/%s", flight.DepartTime, flight.ArriveTime)
	}
	if flight.Airline.Code != "BA" || flight.Airline.Logo != "BA" {
		t.Errorf("Unexpected airline %+v", flight.Airline)
	}
	if flight.ReturnDurationMin != nil {
		t.Error("Expected a one-way flight")
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT2H30M", 150},
		{"PT45M", 45},
		{"PT3H", 180},
		{"P1DT2H", 1560},
		{"PT", 0},
		{"", constants.DefaultDurationMinutes},
		{"abc", constants.DefaultDurationMinutes},
		{"2h30m", constants.DefaultDurationMinutes},
	}

	for _, tt := range tests {
		if got := ParseISODuration(tt.in); got != tt.want {
			t.Errorf("ParseISODuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeOffer_UnparsableDurationUsesDefault(t *testing.T) {
	offer := simpleOffer("off_1")
	offer.Slices[0].Duration = "soon"

	flight, ok := NormalizeOffer(offer, NormalizeOptions{})
	if !ok {
		t.Fatal("Expected offer to normalize")
	}
	if flight.DurationMin != constants.DefaultDurationMinutes {
		t.Errorf("Expected default duration, got %d", flight.DurationMin)
	}

	flight, _ = NormalizeOffer(offer, NormalizeOptions{DurationSource: DurationFromSliceThenTimestamps})
	if flight.DurationMin != 150 {
		t.Errorf("Expected timestamp-derived duration 150, got %d", flight.DurationMin)
	}
}

func TestNormalizeOffer_StopsAndSegments(t *testing.T) {
	offer := simpleOffer("off_1")
	offer.Slices[0].Segments = []dtos.DuffelSegment{
		segment("SFO", "DEN", "2026-11-02T06:00:00", "2026-11-02T09:30:00", nil),
		segment("DEN", "ORD", "2026-11-02T10:30:00", "2026-11-02T14:00:00", nil),
		segment("ORD", "BOS", "2026-11-02T15:00:00", "2026-11-02T18:10:00", nil),
	}

	flight, ok := NormalizeOffer(offer, NormalizeOptions{})
	if !ok {
		t.Fatal("Expected offer to normalize")
	}
	if flight.Stops != 2 {
		t.Errorf("Expected 2 stops, got %d", flight.Stops)
	}
	if flight.Origin != "SFO" || flight.Destination != "BOS" {
		t.Errorf("Expected SFO-BOS from segments, got %s-%s", flight.Origin, flight.Destination)
	}
	if flight.ArriveTime != "18:10" {
		t.Errorf("Expected arrival from last segment, got %s", flight.ArriveTime)
	}
	if len(flight.Segments) != 3 || flight.Segments[2].Direction != "outbound" {
		t.Errorf("Unexpected segments %+v", flight.Segments)
	}
}

func TestNormalizeOffer_RoundTrip(t *testing.T) {
	offer := simpleOffer("off_1")
	offer.Slices = append(offer.Slices, dtos.DuffelSlice{
		Duration: "PT2H40M",
		Segments: []dtos.DuffelSegment{
			segment("CDG", "AMS", "2026-11-09T18:05:00", "2026-11-09T19:25:00", nil),
			segment("AMS", "LHR", "2026-11-09T20:30:00", "2026-11-09T20:45:00", nil),
		},
	})

	flight, ok := NormalizeOffer(offer, NormalizeOptions{})
	if !ok {
		t.Fatal("Expected offer to normalize")
	}
	if flight.ReturnDurationMin == nil || *flight.ReturnDurationMin != 160 {
		t.Errorf("Expected return duration 160, got %v", flight.ReturnDurationMin)
	}
	if flight.ReturnStops == nil || *flight.ReturnStops != 1 {
		t.Errorf("Expected 1 return stop, got %v", flight.ReturnStops)
	}
	if flight.ReturnDepartTime != "18:05" || flight.ReturnArriveTime != "20:45" {
		t.Errorf("Unexpected return times %s/%s", flight.ReturnDepartTime, flight.ReturnArriveTime)
	}
	if len(flight.Segments) != 3 || flight.Segments[1].Direction != "return" {
		t.Errorf("Unexpected segments %+v", flight.Segments)
	}
}

func TestNormalizeOffer_MalformedReturnIsOneWay(t *testing.T) {
	offer := simpleOffer("off_1")
	offer.Slices = append(offer.Slices, dtos.DuffelSlice{Duration: "PT1H"})

	flight, ok := NormalizeOffer(offer, NormalizeOptions{})
	if !ok {
		t.Fatal("Expected offer to normalize")
	}
	if flight.ReturnDurationMin != nil || flight.ReturnStops != nil {
		t.Error("Expected return fields to stay empty")
	}
}

func TestNormalizeOffer_Rejects(t *testing.T) {
	noID := simpleOffer("")
	noSlices := simpleOffer("off_2")
	noSlices.Slices = nil
	noSegments := simpleOffer("off_3")
	noSegments.Slices[0].Segments = nil

	for name, offer := range map[string]dtos.DuffelOffer{"missing id": noID, "missing slices": noSlices, "missing segments": noSegments} {
		if _, ok := NormalizeOffer(offer, NormalizeOptions{}); ok {
			t.Errorf("Expected %s to be rejected", name)
		}
	}
}

func TestNormalizeOffers_DedupKeepsFirst(t *testing.T) {
	first := simpleOffer("A")
	second := simpleOffer("A")
	second.TotalAmount = "10.00"
	offers := []dtos.DuffelOffer{first, simpleOffer("B"), second, simpleOffer("C"), simpleOffer("")}

	flights, report := NormalizeOffers(offers, NormalizeOptions{})

	ids := []string{}
	for _, f := range flights {
		ids = append(ids, f.ID)
	}
	if len(ids) != 3 || ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
		t.Fatalf("Expected [A B C], got %v", ids)
	}
	if flights[0].Price != 200 {
		t.Errorf("Expected first occurrence of A to win, got price %d", flights[0].Price)
	}
	if report.Received != 5 || report.Normalized != 3 {
		t.Errorf("Unexpected report %+v", report)
	}
	if report.Dropped[DropDuplicate] != 1 || report.Dropped[DropMissingID] != 1 {
		t.Errorf("Unexpected drop counts %v", report.Dropped)
	}
}

func TestNormalizeOffers_MalformedDropped(t *testing.T) {
	bad := simpleOffer("X")
	bad.Malformed = true

	flights, report := NormalizeOffers([]dtos.DuffelOffer{bad, simpleOffer("A")}, NormalizeOptions{})

	if len(flights) != 1 || flights[0].ID != "A" {
		t.Fatalf("Expected only A, got %+v", flights)
	}
	if report.Received != 2 || report.Dropped[DropMalformed] != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
}

func TestResolveCarrier(t *testing.T) {
	marketing := &dtos.DuffelCarrier{IATACode: "ua", Name: "United"}
	operating := &dtos.DuffelCarrier{IATACode: "OO", Name: "SkyWest"}

	offer := simpleOffer("off_1")
	offer.Owner = nil
	offer.Slices[0].Segments[0].MarketingCarrier = marketing
	offer.Slices[0].Segments[0].OperatingCarrier = operating
	if got := ResolveCarrier(offer); got.Code != "UA" || got.Name != "United" {
		t.Errorf("Expected marketing carrier UA, got %+v", got)
	}

	offer.Slices[0].Segments[0].MarketingCarrier = nil
	if got := ResolveCarrier(offer); got.Code != "OO" {
		t.Errorf("Expected operating carrier OO, got %+v", got)
	}

	offer.Slices[0].Segments[0].OperatingCarrier = nil
	got := ResolveCarrier(offer)
	if got.Code != constants.PlaceholderCarrierCode || got.Name != constants.PlaceholderCarrierName {
		t.Errorf("Expected placeholder carrier, got %+v", got)
	}
}

func TestDisplayPrice(t *testing.T) {
	tests := []struct {
		raw    string
		markup float64
		want   int
	}{
		{"199.50", 1, 200},
		{"199.49", 1, 199},
		{"100.00", 1.1, 110},
		{"$1,234.40", 1, 1234},
		{"", 1, 0},
		{"n/a", 1, 0},
		{"50", 0, 50},
	}

	for _, tt := range tests {
		if got := DisplayPrice(tt.raw, tt.markup); got != tt.want {
			t.Errorf("DisplayPrice(%q, %v) = %d, want %d", tt.raw, tt.markup, got, tt.want)
		}
	}
}

func TestClockTime(t *testing.T) {
	tests := map[string]string{
		"2026-11-02T07:15:00":       "07:15",
		"2026-11-02T23:59:00+09:00": "23:59",
		"2026-11-02 05:00":          "05:00",
		"2026-11-02":                "",
		"":                          "",
		"2026-11-02Txx:yy":          "",
	}
	for in, want := range tests {
		if got := ClockTime(in); got != want {
			t.Errorf("ClockTime(%q) = %q, want %q", in, got, want)
		}
	}
}
