package handlers

import (
	"net/http"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/services"
)

type BookmarkHandler struct {
	Service *services.BookmarkService
}

type toggleBody struct {
	Kind      string `json:"kind"`
	ListingID string `json:"listing_id"`
}

func (h *BookmarkHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var body toggleBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b := models.Bookmark{UserKey: c.UserKey, Collection: models.Tab(body.Kind), ListingID: body.ListingID}
	on, err := h.Service.Toggle(r.Context(), b)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":       b.Collection,
		"listing_id": b.ListingID,
		"bookmarked": on,
	})
}

func (h *BookmarkHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	list, err := h.Service.GetBookmarksByUser(r.Context(), c.UserKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get bookmarks")
		return
	}
	if list == nil {
		list = []models.Bookmark{}
	}
	writeJSON(w, http.StatusOK, list)
}
