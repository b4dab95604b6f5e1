package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fakhiuBack/internal/backend"
	"fakhiuBack/internal/models"
	"fakhiuBack/internal/services"
)

type callerKey struct{}

// WithCaller stores the authenticated caller on the request context.
func WithCaller(ctx context.Context, c services.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller set by the auth middleware.
func CallerFrom(r *http.Request) (services.Caller, bool) {
	c, ok := r.Context().Value(callerKey{}).(services.Caller)
	return c, ok
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, models.ErrSessionNotFound), errors.Is(err, models.ErrListingNotFound), errors.Is(err, models.ErrNoRecord):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidCriteria), errors.Is(err, models.ErrInvalidTab),
		errors.Is(err, models.ErrInvalidImageData), errors.Is(err, models.ErrInvalidBookmark):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	case errors.Is(err, backend.ErrConnection):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func requireCaller(w http.ResponseWriter, r *http.Request) (services.Caller, bool) {
	c, ok := CallerFrom(r)
	if !ok || c.Token == "" {
		writeError(w, http.StatusUnauthorized, "authorization header missing or invalid")
		return services.Caller{}, false
	}
	return c, true
}
