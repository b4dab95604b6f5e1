package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/services"
)

type SessionHandler struct {
	Service *services.SessionService
}

type tabBody struct {
	Tab string `json:"tab"`
}

type sortBody struct {
	Sort string `json:"sort"`
}

type openBody struct {
	ItemID string `json:"item_id"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Create(r.Context(), c)
	if err != nil {
		writeError(w, statusFor(err), "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.View(r.Context(), c, id)
	})
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(c, getParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SelectTab(w http.ResponseWriter, r *http.Request) {
	var body tabBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tab, ok := models.ParseTab(body.Tab)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown tab %q", body.Tab))
		return
	}
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.SelectTab(r.Context(), c, id, tab)
	})
}

func (h *SessionHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var criteria models.FilterCriteria
	if err := decodeJSON(r, &criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := criteria.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.SetCriteria(r.Context(), c, id, criteria)
	})
}

func (h *SessionHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.ClearCriteria(r.Context(), c, id)
	})
}

func (h *SessionHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var body sortBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.SetSort(r.Context(), c, id, models.SortKey(body.Sort))
	})
}

func (h *SessionHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.Next(r.Context(), c, id)
	})
}

func (h *SessionHandler) PrevPage(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.Prev(r.Context(), c, id)
	})
}

func (h *SessionHandler) OpenItem(w http.ResponseWriter, r *http.Request) {
	var body openBody
	if err := decodeJSON(r, &body); err != nil || body.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.Open(r.Context(), c, id, body.ItemID)
	})
}

func (h *SessionHandler) CloseItem(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.Close(r.Context(), c, id)
	})
}

func (h *SessionHandler) SetForm(w http.ResponseWriter, r *http.Request) {
	var form models.RequestForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w, r, func(c services.Caller, id string) (models.PageView, error) {
		return h.Service.SetForm(r.Context(), c, id, form)
	})
}

// Submit sends the session's draft. Failed submissions still return the
// session view, with the notice explaining what went wrong.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := h.Service.Submit(r.Context(), c, getParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, view)
	case view.SessionID != "":
		writeJSON(w, statusFor(err), view)
	default:
		writeError(w, statusFor(err), err.Error())
	}
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, fn func(services.Caller, string) (models.PageView, error)) {
	c, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := fn(c, getParam(r, "id"))
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if errors.Is(err, models.ErrSessionNotFound) {
			msg = "session not found"
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
