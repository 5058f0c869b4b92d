package constants

// Machine-readable error codes returned in the "code" field of error responses.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeNotConfigured      = "NOT_CONFIGURED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

const (
	MsgFlightSearchNotConfigured = "Flight search is not configured"
	MsgAdminNotConfigured        = "Admin access is not configured"
	MsgUnauthorized              = "Unauthorized"
	MsgStorageUnavailable        = "Application storage is unavailable; keep the application locally"
	MsgApplicationNotFound       = "Application not found"
	MsgTooManyRequests           = "Too many requests"
)

// StorageFallbackLocal tells the browser to persist the record itself.
const StorageFallbackLocal = "local"
