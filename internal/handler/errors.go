package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joydiver/dive-atlas/backend/internal/domain"
)

// Error codes returned in structured API error bodies.
const (
	ErrCodeNotFound          = "not_found"
	ErrCodeValidation        = "validation_error"
	ErrCodeAuthRequired      = "auth_required"
	ErrCodeRemoteUnavailable = "remote_unavailable"
	ErrCodeBadRequest        = "bad_request"
)

// errorDetail is the inner error object of an API error response.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse wraps an errorDetail for JSON serialization.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError writes a structured JSON error body with the given HTTP status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// writeDomainError maps the domain sentinel wrapped in err to its HTTP
// representation. A rolled-back auth failure carries the user-facing
// "log in" prompt; everything else gets the unwrapped message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, ErrCodeAuthRequired,
			"log in to save your changes")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, unwrapMessage(err))
	case errors.Is(err, domain.ErrRemoteUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeRemoteUnavailable,
			"change could not be saved and was reverted")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// unwrapMessage strips the "pkg.Type.Method: " wrapping prefixes from a
// sentinel error chain, leaving the human-readable tail.
// e.g. "status.Service.Toggle: validation error: unknown field" →
// "validation error: unknown field".
func unwrapMessage(err error) string {
	msg := err.Error()
	for {
		i := strings.Index(msg, ": ")
		if i < 0 || !looksLikeWrapPrefix(msg[:i]) {
			return msg
		}
		msg = msg[i+2:]
	}
}

// looksLikeWrapPrefix reports whether s is a "pkg.Type.Method" style
// context prefix rather than part of the message proper.
func looksLikeWrapPrefix(s string) bool {
	return !strings.Contains(s, " ") && strings.Contains(s, ".")
}
