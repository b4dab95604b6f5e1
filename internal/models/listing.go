package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Tab selects which collection a listing belongs to and which browse mode is shown.
type Tab string

const (
	TabRequests Tab = "requests"
	TabOffers   Tab = "offers"
)

// ParseTab returns the tab for a raw value; empty defaults to requests.
func ParseTab(raw string) (Tab, bool) {
	switch Tab(strings.TrimSpace(raw)) {
	case "", TabRequests:
		return TabRequests, true
	case TabOffers:
		return TabOffers, true
	}
	return "", false
}

// Price is a rate price as the backend sends it: a number, a numeric
// string, a placeholder such as "-", or nothing at all.
type Price struct {
	Amount  float64
	Numeric bool
	Text    string
	Defined bool
}

func NumericPrice(v float64) Price {
	return Price{Amount: v, Numeric: true, Text: strconv.FormatFloat(v, 'f', -1, 64), Defined: true}
}

func TextPrice(s string) Price {
	if v, ok := parseFinite(s); ok {
		return Price{Amount: v, Numeric: true, Text: s, Defined: true}
	}
	return Price{Text: s, Defined: true}
}

// parseFinite reads a decimal number. NaN and infinities are not numbers
// for pricing purposes.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Value returns the numeric amount when the price is a number.
func (p Price) Value() (float64, bool) {
	return p.Amount, p.Numeric
}

func (p Price) String() string {
	if !p.Defined {
		return ""
	}
	return p.Text
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch {
	case p.Numeric:
		return json.Marshal(p.Amount)
	case p.Defined:
		return json.Marshal(p.Text)
	}
	return []byte("null"), nil
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = Price{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = TextPrice(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		// booleans and objects are kept as opaque text
		*p = Price{Text: string(b), Defined: true}
		return nil
	}
	*p = NumericPrice(v)
	return nil
}

// Rate is one price/weight pair of a listing.
type Rate struct {
	Price  Price  `json:"price"`
	Weight string `json:"weight"`
}

// Listing is the normalized shape of a request or an offer.
type Listing struct {
	ID           string   `json:"id"`
	Collection   Tab      `json:"collection"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Image        string   `json:"image,omitempty"`
	RouteFrom    string   `json:"routeFrom"`
	RouteTo      string   `json:"routeTo"`
	FlightDate   string   `json:"flightDate"`
	CloseDate    string   `json:"closeDate"`
	Rates        []Rate   `json:"rates"`
	Status       string   `json:"status"`
	User         string   `json:"user,omitempty"`
	UserVerified bool     `json:"user_verified"`
	Rating       *float64 `json:"rating,omitempty"`
	Urgent       bool     `json:"urgent"`
	OfferID      *string  `json:"offer_id,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	MaxWeight    *float64 `json:"maxWeight,omitempty"`
	UsedWeight   *float64 `json:"usedWeight,omitempty"`
	PickupPlace  string   `json:"pickupPlace,omitempty"`
	Contact      string   `json:"contact,omitempty"`
}

// HeadlineRate returns the first rate of the listing.
func (l Listing) HeadlineRate() (Rate, bool) {
	if len(l.Rates) == 0 {
		return Rate{}, false
	}
	return l.Rates[0], true
}

// HeadlinePrice returns the numeric headline price, if there is one.
func (l Listing) HeadlinePrice() (float64, bool) {
	rate, ok := l.HeadlineRate()
	if !ok {
		return 0, false
	}
	return rate.Price.Value()
}

// LinkedToOffer reports whether the request was created against an offer.
func (l Listing) LinkedToOffer() bool {
	return l.OfferID != nil && *l.OfferID != ""
}

// Displayable reports whether the listing carries enough data to be shown.
func (l Listing) Displayable() bool {
	if !validRoutePoint(l.RouteFrom) || !validRoutePoint(l.RouteTo) {
		return false
	}
	rate, ok := l.HeadlineRate()
	return ok && rate.Price.Defined
}

func validRoutePoint(s string) bool {
	return s != "" && s != "undefined"
}

// Snapshot is the in-memory copy of both collections fetched for one token.
type Snapshot struct {
	Requests   []Listing `json:"requests"`
	Offers     []Listing `json:"offers"`
	FetchedAt  time.Time `json:"fetched_at"`
	Generation uint64    `json:"generation"`
}

// Collection returns the listings backing the given tab.
func (s Snapshot) Collection(tab Tab) []Listing {
	if tab == TabOffers {
		return s.Offers
	}
	return s.Requests
}

// Find looks up a listing by id within a collection.
func (s Snapshot) Find(tab Tab, id string) (Listing, bool) {
	for _, l := range s.Collection(tab) {
		if l.ID == id {
			return l, true
		}
	}
	return Listing{}, false
}
