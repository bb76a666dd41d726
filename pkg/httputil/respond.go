package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, map[string]string{"error": msg})
}

// BadRequest reports an invalid client parameter.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// DownstreamError reports a failed or unreachable downstream dependency.
// The chain is single-attempt by design, so failures surface immediately.
func DownstreamError(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadGateway, msg)
}

// HandleError checks err, writes it as a JSON error with the given status,
// and returns true. If err is nil it returns false.
func HandleError(w http.ResponseWriter, err error, status int) bool {
	if err == nil {
		return false
	}
	Error(w, status, err.Error())
	return true
}
