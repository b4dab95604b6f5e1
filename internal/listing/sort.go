package listing

import (
	"math"
	"sort"

	"fakhiuBack/internal/models"
)

// Sort returns a re-ordered copy of listings. The sort is stable so equal
// keys keep their snapshot order across calls.
func Sort(listings []models.Listing, key models.SortKey) []models.Listing {
	out := make([]models.Listing, len(listings))
	copy(out, listings)
	if len(out) < 2 {
		return out
	}

	switch key {
	case models.SortLowestPrice:
		sortByKey(out, priceKey, false)
	case models.SortNearestDate:
		sortByKey(out, flightKey, false)
	default:
		sortByKey(out, flightKey, true)
	}
	return out
}

// sortByKey precomputes keys so each listing's fields are parsed once.
func sortByKey(items []models.Listing, key func(models.Listing) float64, desc bool) {
	keys := make([]float64, len(items))
	for i, item := range items {
		keys[i] = key(item)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if desc {
			return ka > kb
		}
		return ka < kb
	})
	sorted := make([]models.Listing, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// priceKey puts non-numeric prices after every real price.
func priceKey(l models.Listing) float64 {
	if v, ok := l.HeadlinePrice(); ok && !math.IsNaN(v) {
		return v
	}
	return math.Inf(1)
}

// flightKey treats unparsable dates as the far future: last when
// ascending, first when descending.
func flightKey(l models.Listing) float64 {
	if k, ok := dateKey(l.FlightDate); ok {
		return float64(k)
	}
	return math.Inf(1)
}
