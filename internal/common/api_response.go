package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"travel-desk/bookingcart/internal/constants"
	"travel-desk/bookingcart/internal/logging"
	"travel-desk/bookingcart/internal/models/dtos"
)

// RespondJSON writes body as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err)
	}
}

// RespondError maps err onto the {ok:false} envelope.
func RespondError(w http.ResponseWriter, err error) {
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		logging.Error("Request failed", "status", code, "error", err)
	}
	RespondJSON(w, code, body)
}

func errorResponse(err error) (int, dtos.ErrorResponse) {
	var appErr *AppError
	var duffelErr *DuffelError

	switch {
	case errors.As(err, &appErr):
		return appErr.Status, dtos.ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	case errors.As(err, &duffelErr):
		status := duffelErr.Status
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		return status, dtos.ErrorResponse{Error: duffelErr.Message, Code: constants.ErrCodeUpstream}
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable, dtos.ErrorResponse{
			Error:    constants.MsgStorageUnavailable,
			Code:     constants.ErrCodeStorageUnavailable,
			Fallback: constants.StorageFallbackLocal,
		}
	case errors.Is(err, ErrApplicationNotFound):
		return http.StatusNotFound, dtos.ErrorResponse{Error: constants.MsgApplicationNotFound, Code: constants.ErrCodeNotFound}
	case errors.Is(err, ErrFlightSearchNotConfigured):
		return http.StatusInternalServerError, dtos.ErrorResponse{Error: constants.MsgFlightSearchNotConfigured, Code: constants.ErrCodeNotConfigured}
	default:
		return http.StatusInternalServerError, dtos.ErrorResponse{Error: "Internal server error", Code: constants.ErrCodeInternal}
	}
}
