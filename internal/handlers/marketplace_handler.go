package handlers

import (
	"net/http"

	"fakhiuBack/internal/services"
)

type MarketplaceHandler struct {
	Service *services.MarketplaceService
}

// GetListings runs the pipeline for the query in the URL.
func (h *MarketplaceHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.Service.Listings(r.Context(), c.Token, c.UserKey, q)
	if err != nil {
		writeError(w, statusFor(err), "failed to load listings")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Refresh reloads the caller's snapshot from the backend.
func (h *MarketplaceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	snap, err := h.Service.Refresh(r.Context(), c.Token)
	if err != nil {
		writeError(w, statusFor(err), "failed to refresh listings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests":   len(snap.Requests),
		"offers":     len(snap.Offers),
		"fetched_at": snap.FetchedAt,
		"generation": snap.Generation,
	})
}

// Forget drops the caller's cached listings; the next read reloads them.
func (h *MarketplaceHandler) Forget(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	h.Service.Forget(r.Context(), c.Token)
	w.WriteHeader(http.StatusNoContent)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
