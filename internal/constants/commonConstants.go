package constants

type (
	CachePrefix string
)

const (
	CachePrefixFlightSearch CachePrefix = "FS_"
	CachePrefixPlaces       CachePrefix = "PLACES_"
)

const (
	FlightSource = "duffel"

	// PlaceholderCarrierCode is shown when an offer names no carrier at all.
	PlaceholderCarrierCode = "DF"
	PlaceholderCarrierName = "Unknown airline"

	// DefaultDurationMinutes is the sentinel used when a slice duration cannot be parsed.
	DefaultDurationMinutes = 120

	DefaultPlaceLimit = 8
	MaxPlaceLimit     = 10
)
