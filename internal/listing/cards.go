package listing

import (
	"fmt"
	"strings"

	"fakhiuBack/internal/models"
)

// DefaultTitle is shown for listings without a title.
const DefaultTitle = "General item"

const currency = "THB"

// ShortenLocation reduces "City, Region, Country" to "City, Country".
func ShortenLocation(location string) string {
	if location == "" {
		return ""
	}
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return location
	}
	city := strings.TrimSpace(parts[0])
	country := strings.TrimSpace(parts[len(parts)-1])
	return city + ", " + country
}

// PriceLabel renders the headline rate as "<price> THB/<weight>".
func PriceLabel(l models.Listing) string {
	rate, ok := l.HeadlineRate()
	if !ok || !rate.Price.Defined {
		return placeholderPrice
	}
	return fmt.Sprintf("%s %s/%s", rate.Price.String(), currency, rate.Weight)
}

// RemainingWeight is the unused capacity of an offer.
func RemainingWeight(l models.Listing) float64 {
	capacity := defaultOfferWeight
	if l.MaxWeight != nil && *l.MaxWeight != 0 {
		capacity = *l.MaxWeight
	}
	used := 0.0
	if l.UsedWeight != nil {
		used = *l.UsedWeight
	}
	return capacity - used
}

// NewCard builds the display projection of a listing.
func NewCard(l models.Listing, bookmarked bool) models.Card {
	card := models.Card{
		Listing:      l,
		DisplayTitle: l.Title,
		FromLabel:    ShortenLocation(l.RouteFrom),
		ToLabel:      ShortenLocation(l.RouteTo),
		PriceLabel:   PriceLabel(l),
		Bookmarked:   bookmarked,
	}
	if card.DisplayTitle == "" {
		card.DisplayTitle = DefaultTitle
	}
	if l.Collection == models.TabOffers {
		remaining := RemainingWeight(l)
		card.RemainingWeight = &remaining
	}
	return card
}
