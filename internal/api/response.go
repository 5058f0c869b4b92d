package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"travel-desk/bookingcart/internal/common"
)

const maxBodyBytes = 1 << 20

// respond writes body as JSON and stamps how long the handler took.
func respond(w http.ResponseWriter, initTime time.Time, statusCode int, body any) {
	w.Header().Set("X-Response-Time", common.GetResponseTime(initTime))
	common.RespondJSON(w, statusCode, body)
}

func respondWithError(w http.ResponseWriter, initTime time.Time, err error) {
	w.Header().Set("X-Response-Time", common.GetResponseTime(initTime))
	common.RespondError(w, err)
}

// decodeJSONBody reads at most 1 MiB of JSON into dst.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return common.NewValidationError("request body is required")
		case errors.As(err, &maxErr):
			return common.NewValidationError("request body is too large")
		default:
			return common.NewValidationError("invalid JSON body: %v", err)
		}
	}
	return nil
}
