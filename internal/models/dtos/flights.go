package dtos

// FlightSearchRequest is accepted as query parameters (GET) or a JSON body (POST).
type FlightSearchRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
	Infants       int    `json:"infants"`
	CabinClass    string `json:"cabinClass"`
	Limit         int    `json:"limit"`

	MaxPrice      *int   `json:"maxPrice,omitempty"`
	Stops         *int   `json:"stops,omitempty"`
	Airline       string `json:"airline,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`
	Sort          string `json:"sort,omitempty"`
}

type Airline struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Logo    string `json:"logo"`
	LogoURL string `json:"logoUrl,omitempty"`
}

type SegmentDetail struct {
	Direction    string `json:"direction"`
	From         string `json:"from"`
	To           string `json:"to"`
	DepartTime   string `json:"departTime"`
	ArriveTime   string `json:"arriveTime"`
	DepartAt     string `json:"departAt"`
	ArriveAt     string `json:"arriveAt"`
	FlightNumber string `json:"flightNumber,omitempty"`
	CarrierCode  string `json:"carrierCode"`
	CarrierName  string `json:"carrierName,omitempty"`
	Aircraft     string `json:"aircraft,omitempty"`
	DurationMin  int    `json:"durationMin,omitempty"`
}

// NormalizedFlight is the flat display record built from one offer.
type NormalizedFlight struct {
	ID          string  `json:"id"`
	Airline     Airline `json:"airline"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DepartTime  string  `json:"departTime"`
	ArriveTime  string  `json:"arriveTime"`
	DurationMin int     `json:"durationMin"`
	Stops       int     `json:"stops"`
	Price       int     `json:"price"`
	Currency    string  `json:"currency"`

	ReturnDepartTime  string `json:"returnDepartTime,omitempty"`
	ReturnArriveTime  string `json:"returnArriveTime,omitempty"`
	ReturnDurationMin *int   `json:"returnDurationMin,omitempty"`
	ReturnStops       *int   `json:"returnStops,omitempty"`

	Segments []SegmentDetail `json:"segments"`
}

type FlightSearchMeta struct {
	Count  int    `json:"count"`
	Total  int    `json:"total"`
	Source string `json:"source"`
	Cached bool   `json:"cached"`
}

type FlightSearchResponse struct {
	Ok      bool               `json:"ok"`
	Flights []NormalizedFlight `json:"flights"`
	Meta    FlightSearchMeta   `json:"meta"`
}

// Place is one selectable airport in the suggestion list.
type Place struct {
	City    string `json:"city"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
}

type AirportsResponse struct {
	Ok       bool    `json:"ok"`
	Airports []Place `json:"airports"`
}

type ErrorResponse struct {
	Ok       bool   `json:"ok"`
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}
