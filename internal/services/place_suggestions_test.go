package services

import (
	"testing"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/models/dtos"
)

func TestFlattenPlaceSuggestions_DedupAcrossCityAndAirport(t *testing.T) {
	suggestions := []dtos.DuffelPlace{
		{
			Type:            "city",
			Name:            "London",
			IATACountryCode: "GB",
			Airports: []dtos.DuffelPlace{
				{Type: "airport", IATACode: "LHR", Name: "Heathrow Airport"},
				{Type: "airport", IATACode: "lhr", Name: "Heathrow Terminal 5"},
			},
		},
		{Type: "airport", IATACode: "LHR", Name: "Heathrow", CityName: "London", IATACountryCode: "GB"},
	}

	got := FlattenPlaceSuggestions(suggestions, 10)

	if len(got) != 1 {
		t.Fatalf("Expected exactly one LHR record, got %+v", got)
	}
	want := dtos.Place{City: "London", Name: "Heathrow Airport", Code: "LHR", Country: "GB"}
	if got[0] != want {
		t.Errorf("Expected %+v, got %+v", want, got[0])
	}
}

func TestFlattenPlaceSuggestions_DropsBadCodesAndTruncates(t *testing.T) {
	suggestions := []dtos.DuffelPlace{
		{Type: "airport", IATACode: "", Name: "Heliport"},
		{Type: "airport", IATACode: "LGWX", Name: "Broken"},
		{Type: "airport", IATACode: "JFK", Name: "John F. Kennedy", City: &dtos.DuffelPlace{Name: "New York"}, IATACountryCode: "US"},
		{Type: "airport", IATACode: "JFK", Name: "Duplicate"},
		{Type: "airport", IATACode: "LGA", Name: "LaGuardia", CityName: "New York"},
		{Type: "airport", IATACode: "EWR", Name: "Newark"},
	}

	got := FlattenPlaceSuggestions(suggestions, 2)

	if len(got) != 2 || got[0].Code != "JFK" || got[1].Code != "LGA" {
		t.Fatalf("Expected [JFK LGA], got %+v", got)
	}
	if got[0].City != "New York" {
		t.Errorf("Expected city from nested city, got %q", got[0].City)
	}
}

func TestFlattenPlaceSuggestions_CityFallsBackToName(t *testing.T) {
	got := FlattenPlaceSuggestions([]dtos.DuffelPlace{{Type: "airport", IATACode: "NRT", Name: "Narita"}}, 5)
	if len(got) != 1 || got[0].City != "Narita" {
		t.Errorf("Expected name as city, got %+v", got)
	}
}

func TestFlattenPlaceSuggestions_NonPositiveLimit(t *testing.T) {
	suggestions := []dtos.DuffelPlace{{Type: "airport", IATACode: "CDG", Name: "Charles de Gaulle"}}

	for _, limit := range []int{0, -1} {
		got := FlattenPlaceSuggestions(suggestions, limit)
		if got == nil || len(got) != 0 {
			t.Errorf("limit %d: expected empty list, got %+v", limit, got)
		}
	}
}

func TestClampPlaceLimit(t *testing.T) {
	tests := map[int]int{
		0:  constants.DefaultPlaceLimit,
		-3: constants.DefaultPlaceLimit,
		4:  4,
		99: constants.MaxPlaceLimit,
	}
	for in, want := range tests {
		if got := ClampPlaceLimit(in); got != want {
			t.Errorf("ClampPlaceLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
