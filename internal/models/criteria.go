package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SortKey selects the ordering applied to the filtered listings.
type SortKey string

const (
	SortNewest      SortKey = "newest"
	SortLowestPrice SortKey = "lowestPrice"
	SortNearestDate SortKey = "nearestDate"
)

// ParseSortKey maps unknown and empty values to newest.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortLowestPrice:
		return SortLowestPrice
	case SortNearestDate:
		return SortNearestDate
	}
	return SortNewest
}

// Range is an inclusive numeric interval; a nil bound is unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// UnmarshalJSON accepts bounds as numbers or numeric strings, the way form
// inputs send them. Empty or unparsable bounds are left unset.
func (r *Range) UnmarshalJSON(b []byte) error {
	var raw struct {
		Min json.RawMessage `json:"min"`
		Max json.RawMessage `json:"max"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Min, r.Max = parseBound(raw.Min), parseBound(raw.Max)
	return nil
}

func parseBound(b json.RawMessage) *float64 {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}
	return ParseBound(s)
}

// ParseBound parses one range bound; blank, non-numeric or non-finite
// input is unset.
func ParseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, ok := parseFinite(s)
	if !ok {
		return nil
	}
	return &v
}

func (r Range) Active() bool {
	return r.Min != nil || r.Max != nil
}

func (r Range) Validate(name string) error {
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%s: min is greater than max", name)
	}
	return nil
}

// DateLayout is the calendar date format accepted for date range bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive interval of calendar dates in DateLayout.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (r DateRange) Active() bool {
	return r.From != "" || r.To != ""
}

func (r DateRange) Validate() error {
	var from, to time.Time
	var err error
	if r.From != "" {
		if from, err = time.Parse(DateLayout, r.From); err != nil {
			return fmt.Errorf("date_range.from: %w", err)
		}
	}
	if r.To != "" {
		if to, err = time.Parse(DateLayout, r.To); err != nil {
			return fmt.Errorf("date_range.to: %w", err)
		}
	}
	if r.From != "" && r.To != "" && from.After(to) {
		return fmt.Errorf("date_range: from is after to")
	}
	return nil
}

// FilterCriteria is the full set of browse filters. Zero values are inactive.
type FilterCriteria struct {
	Search          string    `json:"search,omitempty"`
	Country         string    `json:"country,omitempty"`
	Status          string    `json:"status,omitempty"`
	PriceRange      Range     `json:"price_range"`
	DateRange       DateRange `json:"date_range"`
	ItemTypes       []string  `json:"item_types,omitempty"`
	WeightRange     Range     `json:"weight_range"`
	RatingThreshold float64   `json:"rating,omitempty"`
	VerifiedOnly    bool      `json:"verified_only,omitempty"`
	UrgentOnly      bool      `json:"urgent_only,omitempty"`
}

// AdvancedActive reports whether any of the advanced filters is set.
func (c FilterCriteria) AdvancedActive() bool {
	return c.PriceRange.Active() || c.DateRange.Active() || len(c.ItemTypes) > 0 ||
		c.WeightRange.Active() || c.RatingThreshold > 0 || c.VerifiedOnly || c.UrgentOnly
}

// AnyActive reports whether clearing the filters would change anything.
func (c FilterCriteria) AnyActive() bool {
	return c.Search != "" || c.Country != "" || c.Status != "" || c.AdvancedActive()
}

func (c FilterCriteria) Validate() error {
	if err := c.PriceRange.Validate("price_range"); err != nil {
		return err
	}
	if err := c.WeightRange.Validate("weight_range"); err != nil {
		return err
	}
	if err := c.DateRange.Validate(); err != nil {
		return err
	}
	if c.RatingThreshold < 0 {
		return fmt.Errorf("rating: must not be negative")
	}
	return nil
}

// Query is everything the pipeline needs besides the snapshot.
type Query struct {
	Tab      Tab            `json:"tab"`
	Criteria FilterCriteria `json:"criteria"`
	Sort     SortKey        `json:"sort"`
	Page     int            `json:"page"`
}
