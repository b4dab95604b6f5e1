package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fakhiuBack/internal/models"
)

const (
	placeholderPrice  = "-"
	placeholderWeight = "1kg"
)

// rawListing is the loose record the backend returns. Requests still use
// snake_case names, offers use camelCase; both are accepted for both.
type rawListing struct {
	ID           flexString      `json:"id"`
	Title        flexString      `json:"title"`
	Description  flexString      `json:"description"`
	Image        flexString      `json:"image"`
	RouteFrom    flexString      `json:"routeFrom"`
	FromLocation flexString      `json:"from_location"`
	RouteTo      flexString      `json:"routeTo"`
	ToLocation   flexString      `json:"to_location"`
	FlightDate   flexString      `json:"flightDate"`
	Deadline     flexString      `json:"deadline"`
	CloseDate    flexString      `json:"closeDate"`
	CloseDateAlt flexString      `json:"close_date"`
	Rates        json.RawMessage `json:"rates"`
	Budget       models.Price    `json:"budget"`
	Status       flexString      `json:"status"`
	User         json.RawMessage `json:"user"`
	UserVerified flexBool        `json:"user_verified"`
	Rating       flexNumber      `json:"rating"`
	UserRating   flexNumber      `json:"user_rating"`
	Urgent       flexBool        `json:"urgent"`
	OfferID      flexString      `json:"offer_id"`
	Weight       flexNumber      `json:"weight"`
	MaxWeight    flexNumber      `json:"maxWeight"`
	MaxWeightAlt flexNumber      `json:"max_weight"`
	UsedWeight   flexNumber      `json:"usedWeight"`
	PickupPlace  flexString      `json:"pickupPlace"`
	Contact      flexString      `json:"contact"`
}

type rawRate struct {
	Price  models.Price `json:"price"`
	Weight flexString   `json:"weight"`
}

// ErrNotCollection is returned when a backend payload is not a JSON array.
var ErrNotCollection = errors.New("listing: payload is not a collection")

// DecodeCollection projects every record of a backend JSON array. Records
// that are not JSON objects are skipped and counted.
func DecodeCollection(tab models.Tab, body []byte) ([]models.Listing, int, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotCollection, err)
	}
	out := make([]models.Listing, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		l, err := Project(tab, raw)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, l)
	}
	return out, skipped, nil
}

// Project normalizes one raw record. Missing fields never fail the
// projection; only a record that is not a JSON object does.
func Project(tab models.Tab, data []byte) (models.Listing, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return models.Listing{}, fmt.Errorf("listing: record is not an object")
	}
	var raw rawListing
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Listing{}, fmt.Errorf("listing: decode record: %w", err)
	}
	return raw.normalize(tab), nil
}

func (r rawListing) normalize(tab models.Tab) models.Listing {
	l := models.Listing{
		ID:           r.ID.value,
		Collection:   tab,
		Title:        r.Title.value,
		Description:  r.Description.value,
		Image:        r.Image.value,
		RouteFrom:    firstNonEmpty(r.RouteFrom.value, r.FromLocation.value),
		RouteTo:      firstNonEmpty(r.RouteTo.value, r.ToLocation.value),
		FlightDate:   firstNonEmpty(r.FlightDate.value, r.Deadline.value),
		CloseDate:    firstNonEmpty(r.CloseDate.value, r.CloseDateAlt.value),
		Rates:        r.rates(),
		Status:       r.Status.value,
		User:         userName(r.User),
		UserVerified: r.UserVerified.value,
		Rating:       firstNumber(r.Rating, r.UserRating),
		Urgent:       r.Urgent.value,
		Weight:       r.Weight.ptr(),
		MaxWeight:    firstNumber(r.MaxWeight, r.MaxWeightAlt),
		UsedWeight:   r.UsedWeight.ptr(),
		PickupPlace:  r.PickupPlace.value,
		Contact:      r.Contact.value,
	}
	if id := r.OfferID.value; r.OfferID.set && id != "" && id != "0" {
		l.OfferID = &id
	}
	return l
}

func (r rawListing) rates() []models.Rate {
	var elems []json.RawMessage
	_ = json.Unmarshal(r.Rates, &elems)
	rates := make([]models.Rate, 0, len(elems))
	for _, elem := range elems {
		var rr rawRate
		if err := json.Unmarshal(elem, &rr); err != nil {
			continue
		}
		rates = append(rates, models.Rate{Price: rr.Price, Weight: rr.Weight.value})
	}
	if len(rates) > 0 {
		return rates
	}
	price := models.TextPrice(placeholderPrice)
	if budgetSet(r.Budget) {
		price = r.Budget
	}
	return []models.Rate{{Price: price, Weight: placeholderWeight}}
}

func budgetSet(p models.Price) bool {
	if !p.Defined {
		return false
	}
	if v, ok := p.Value(); ok {
		return v != 0
	}
	return p.Text != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...flexNumber) *float64 {
	for _, v := range values {
		if v.set {
			return v.ptr()
		}
	}
	return nil
}

func userName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	case '{':
		var u struct {
			Name        string `json:"name"`
			Username    string `json:"username"`
			DisplayName string `json:"display_name"`
		}
		_ = json.Unmarshal(raw, &u)
		return firstNonEmpty(u.Name, u.DisplayName, u.Username)
	}
	return ""
}

// flexString accepts strings, numbers and booleans.
type flexString struct {
	value string
	set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = flexString{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		if err := json.Unmarshal(b, &f.value); err != nil {
			return err
		}
	case '{', '[':
		return nil
	default:
		f.value = string(b)
	}
	f.set = true
	return nil
}

// flexNumber accepts numbers and numeric strings.
type flexNumber struct {
	value float64
	set   bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = flexNumber{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f.value, f.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &f.value); err != nil {
		f.value = 0
		return nil
	}
	f.set = true
	return nil
}

func (f flexNumber) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// flexBool accepts booleans, "true"/"1"/"yes" strings and non-zero numbers.
type flexBool struct {
	value bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = flexBool{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case 't':
		f.value = bytes.Equal(b, []byte("true"))
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			f.value = true
		}
	case 'f', 'n', '{', '[':
	default:
		var v float64
		if err := json.Unmarshal(b, &v); err == nil {
			f.value = v != 0
		}
	}
	return nil
}
