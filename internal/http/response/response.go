// Package response writes JSON error envelopes for middleware that
// answers before a request reaches the API, such as the rate limiter.
// Everything behind the router formats its own responses.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
)

// Envelope is the body shape for rejected requests.
type Envelope struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// Error writes an error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		Success: false,
		Error:   message,
	}

	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode error response", "error", err)
		}
	}
}

// TooManyRequests writes a 429 with a Retry-After hint. Limiter buckets
// refill on the order of a second, so the hint is a flat one second.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	w.Header().Set("Retry-After", "1")
	Error(w, http.StatusTooManyRequests, message, logger)
}
