package dtos

import (
	"encoding/json"
	"strconv"
)

// ---- OFFER REQUESTS ----
type DuffelOfferRequest struct {
	Data DuffelOfferRequestData `json:"data"`
}

type DuffelOfferRequestData struct {
	Slices     []DuffelSliceRequest `json:"slices"`
	Passengers []DuffelPassenger    `json:"passengers"`
	CabinClass string               `json:"cabin_class,omitempty"`
}

type DuffelSliceRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

// DuffelPassenger is either typed ("adult", "infant_without_seat") or aged (children).
type DuffelPassenger struct {
	Type string `json:"type,omitempty"`
	Age  *int   `json:"age,omitempty"`
}

type DuffelOfferRequestResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ---- OFFERS ----
type DuffelOffer struct {
	ID            string         `json:"id"`
	TotalAmount   DuffelAmount   `json:"total_amount"`
	TotalCurrency string         `json:"total_currency"`
	Owner         *DuffelCarrier `json:"owner"`
	Slices        []DuffelSlice  `json:"slices"`

	// Malformed marks an offer whose JSON did not fit this shape.
	Malformed bool `json:"-"`
}

type DuffelSlice struct {
	Duration    string          `json:"duration"`
	Origin      DuffelPlace     `json:"origin"`
	Destination DuffelPlace     `json:"destination"`
	Segments    []DuffelSegment `json:"segments"`
}

type DuffelSegment struct {
	ID                           string          `json:"id"`
	DepartingAt                  string          `json:"departing_at"`
	ArrivingAt                   string          `json:"arriving_at"`
	Duration                     string          `json:"duration"`
	Origin                       DuffelPlace     `json:"origin"`
	Destination                  DuffelPlace     `json:"destination"`
	MarketingCarrier             *DuffelCarrier  `json:"marketing_carrier"`
	OperatingCarrier             *DuffelCarrier  `json:"operating_carrier"`
	MarketingCarrierFlightNumber string          `json:"marketing_carrier_flight_number"`
	Aircraft                     *DuffelAircraft `json:"aircraft"`
}

type DuffelCarrier struct {
	IATACode      string `json:"iata_code"`
	Name          string `json:"name"`
	LogoSymbolURL string `json:"logo_symbol_url"`
	LogoLockupURL string `json:"logo_lockup_url"`
}

type DuffelAircraft struct {
	Name string `json:"name"`
}

// ---- PLACES ----

// DuffelPlace is shared by offer endpoints and place suggestions. Suggestions
// of type "city" nest their airports.
type DuffelPlace struct {
	Type            string        `json:"type"`
	IATACode        string        `json:"iata_code"`
	Name            string        `json:"name"`
	CityName        string        `json:"city_name"`
	IATACountryCode string        `json:"iata_country_code"`
	City            *DuffelPlace  `json:"city"`
	Airports        []DuffelPlace `json:"airports"`
}

type DuffelPlaceSuggestionsResponse struct {
	Data []DuffelPlace `json:"data"`
}

// ---- ERRORS ----
type DuffelErrorResponse struct {
	Errors []DuffelErrorEntry `json:"errors"`
}

type DuffelErrorEntry struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DuffelAmount accepts a decimal either as a JSON string or a JSON number.
type DuffelAmount string

func (a *DuffelAmount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = DuffelAmount(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = DuffelAmount(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}
