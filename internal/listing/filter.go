package listing

import (
	"strings"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/cases"

	"fakhiuBack/internal/models"
)

const (
	defaultRequestWeight = 1.0
	defaultOfferWeight   = 10.0
)

var (
	earliestDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	latestDate   = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// predicate is one independent check. It must return true when its
// criterion is not set.
type predicate func(l models.Listing, c models.FilterCriteria, tab models.Tab) bool

var predicates = []predicate{
	matchSearch,
	matchCountry,
	matchStatus,
	matchPrice,
	matchDate,
	matchItemTypes,
	matchWeight,
	matchRating,
	matchVerified,
	matchUrgent,
}

// Matches reports whether a listing passes every active criterion.
func Matches(l models.Listing, c models.FilterCriteria, tab models.Tab) bool {
	for _, p := range predicates {
		if !p(l, c, tab) {
			return false
		}
	}
	return true
}

// Filter returns the listings of a collection that pass the criteria. On
// the requests tab, requests linked to an offer are always dropped.
func Filter(listings []models.Listing, c models.FilterCriteria, tab models.Tab) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if tab == models.TabRequests && l.LinkedToOffer() {
			continue
		}
		if Matches(l, c, tab) {
			out = append(out, l)
		}
	}
	return out
}

func matchSearch(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	if c.Search == "" {
		return true
	}
	for _, field := range []string{l.RouteFrom, l.RouteTo, l.Description, l.Title} {
		if strings.Contains(field, c.Search) {
			return true
		}
	}
	return false
}

func matchCountry(l models.Listing, c models.FilterCriteria, tab models.Tab) bool {
	if c.Country == "" {
		return true
	}
	if tab == models.TabOffers {
		return l.RouteTo == c.Country
	}
	return l.RouteFrom == c.Country
}

func matchStatus(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	return c.Status == "" || l.Status == c.Status
}

func matchPrice(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	if !c.PriceRange.Active() {
		return true
	}
	price, ok := l.HeadlinePrice()
	if !ok {
		return false
	}
	return within(price, c.PriceRange.Min, c.PriceRange.Max)
}

func matchDate(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	if !c.DateRange.Active() {
		return true
	}
	flight, err := parseCalendarDate(l.FlightDate)
	if err != nil {
		return false
	}
	from, to := earliestDate, latestDate
	if t, err := parseCalendarDate(c.DateRange.From); c.DateRange.From != "" && err == nil {
		from = t
	}
	if t, err := parseCalendarDate(c.DateRange.To); c.DateRange.To != "" && err == nil {
		to = t
	}
	return !flight.Before(from) && !flight.After(to)
}

func matchItemTypes(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	if len(c.ItemTypes) == 0 {
		return true
	}
	title := cases.Fold().String(l.Title)
	description := cases.Fold().String(l.Description)
	for _, kind := range c.ItemTypes {
		keyword := cases.Fold().String(kind)
		if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

func matchWeight(l models.Listing, c models.FilterCriteria, tab models.Tab) bool {
	if !c.WeightRange.Active() {
		return true
	}
	return within(weightOf(l, tab), c.WeightRange.Min, c.WeightRange.Max)
}

// weightOf is the weight the range filter compares: the explicit weight of
// a request, or the capacity of an offer.
func weightOf(l models.Listing, tab models.Tab) float64 {
	if tab == models.TabOffers {
		if l.MaxWeight != nil && *l.MaxWeight != 0 {
			return *l.MaxWeight
		}
		return defaultOfferWeight
	}
	if l.Weight != nil && *l.Weight != 0 {
		return *l.Weight
	}
	return defaultRequestWeight
}

func matchRating(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	if c.RatingThreshold == 0 {
		return true
	}
	return l.Rating != nil && *l.Rating >= c.RatingThreshold
}

func matchVerified(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	return !c.VerifiedOnly || l.UserVerified
}

func matchUrgent(l models.Listing, c models.FilterCriteria, _ models.Tab) bool {
	return !c.UrgentOnly || l.Urgent
}

func within[T constraints.Ordered](v T, lo, hi *T) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}
