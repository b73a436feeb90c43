// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/cardlink-labs/cardlink-middleware/pkg/app/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
// This allows using clean error-returning handlers with any router (chi, http.ServeMux, etc.)
//
// Usage with chi:
//
//	r.Post("/users/me", http.HandleError(handler.syncMe))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

// envelopeError mirrors the service response envelope so failed requests
// carry the same shape as successful ones, with a nil data field.
type envelopeError struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// DefaultErrorHandler handles errors returned from HTTP handlers
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError

	// ServiceError carries its own status code and caller-safe message
	if errors.As(err, &svcErr) {
		writeEnvelopeError(w, svcErr.StatusCode(), svcErr.Message)
		return
	}

	writeEnvelopeError(w, http.StatusInternalServerError, "Unexpected Service Error")
}

func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&envelopeError{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Data:       nil,
	})
}
