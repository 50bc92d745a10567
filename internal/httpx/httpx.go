// Package httpx holds the request plumbing shared by every handler: reading
// the caller's id, path ids and JSON bodies, and mapping domain errors to
// status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/auth"
	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

// UserID writes 401 and returns false when the request is not authenticated.
func UserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := auth.UserID(r.Context())
	if err != nil {
		config.WithContext(r.Context()).Warn("User not authenticated")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

// PathID parses the named chi URL parameter as a UUID.
func PathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		http.Error(w, name+" required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// Decode reads a JSON body into dst. Enum and date fields fail here with a
// goal.ErrInvalidInput error, which is still a 400.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// Status maps an error returned by a service to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, goal.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, goal.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error logs err with what the handler was doing and writes the mapped status.
// Client errors carry their message; server errors stay opaque.
func Error(w http.ResponseWriter, r *http.Request, err error, doing string) {
	status := Status(err)
	log := config.WithContext(r.Context()).WithError(err)
	if status >= http.StatusInternalServerError {
		log.Error("Failed to " + doing)
		http.Error(w, "internal server error", status)
		return
	}
	log.Warn("Rejected " + doing)
	http.Error(w, err.Error(), status)
}
