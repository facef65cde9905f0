package api

import (
	"encoding/json"
	"net/http"

	"movers/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteError writes an error response with automatic status mapping. This
// is the single place failures become HTTP statuses.
func WriteError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	WriteJSON(w, ErrorResponse{
		Error: err.Error(),
		Code:  string(code),
	}, mapCodeToStatus(code))
}

// mapCodeToStatus maps movers error codes to HTTP status codes
func mapCodeToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.InvalidInput:
		return http.StatusBadRequest // 400
	case errors.ConfigMissing:
		return http.StatusInternalServerError // 500
	case errors.UpstreamFailed:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	WriteJSON(w, ErrorResponse{
		Error: message,
		Code:  string(errors.InternalError),
	}, http.StatusInternalServerError)
}
