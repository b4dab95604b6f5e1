package handlers

import (
	"net/http"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
	Market  *services.MarketplaceService
}

type createRequestBody struct {
	models.RequestForm
	OfferID string `json:"offer_id,omitempty"`
}

// CreateRequest submits a request without a session. An offer_id, when
// given, must name an offer in the caller's snapshot.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := CallerFrom(r)
	if !ok {
		c = services.Caller{}
	}

	var body createRequestBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub := services.Submission{Token: c.Token, DeviceToken: c.DeviceToken, Form: body.RequestForm, Tab: models.TabRequests}
	if body.OfferID != "" && c.Token != "" {
		snap, err := h.Market.Snapshot(r.Context(), c.Token)
		if err != nil {
			writeError(w, statusFor(err), "failed to load offers")
			return
		}
		offer, found := snap.Find(models.TabOffers, body.OfferID)
		if !found {
			writeError(w, http.StatusNotFound, "offer not found")
			return
		}
		sub.Offer = &offer
		sub.Tab = models.TabOffers
	}

	notice, err := h.Service.Submit(r.Context(), sub)
	if err != nil {
		writeJSON(w, statusFor(err), notice)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}
