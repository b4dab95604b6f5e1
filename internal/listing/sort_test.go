package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakhiuBack/internal/models"
)

func withDate(d string) func(*models.Listing) {
	return func(l *models.Listing) { l.FlightDate = d }
}

func withTextPrice(p string) func(*models.Listing) {
	return func(l *models.Listing) { l.Rates[0].Price = models.TextPrice(p) }
}

func TestSortLowestPriceScenario(t *testing.T) {
	listings := []models.Listing{request("a", 500), request("b", 200), request("c", 800)}

	got := Sort(listings, models.SortLowestPrice)

	var prices []float64
	for _, l := range got {
		p, _ := l.HeadlinePrice()
		prices = append(prices, p)
	}
	assert.Equal(t, []float64{200, 500, 800}, prices)
	assert.Equal(t, []string{"a", "b", "c"}, ids(listings), "input must not be reordered")
}

func TestSortLowestPricePreorder(t *testing.T) {
	listings := []models.Listing{
		request("a", 50),
		request("b", 0, withTextPrice("-")),
		request("c", 10),
		request("d", 10),
		request("e", 0, withTextPrice("ask me")),
		request("f", 75),
	}
	listings = append(listings, models.Listing{ID: "g"})

	got := Sort(listings, models.SortLowestPrice)
	require.Len(t, got, len(listings))
	assert.Equal(t, []string{"c", "d", "a", "f", "b", "e", "g"}, ids(got))

	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, priceKey(got[i-1]), priceKey(got[i]))
	}
}

func TestSortByDate(t *testing.T) {
	listings := []models.Listing{
		request("mid", 1, withDate("2025-05-10")),
		request("bad", 1, withDate("next week")),
		request("early", 1, withDate("2025-01-02T08:00:00+07:00")),
		request("late", 1, withDate("2025-12-24")),
		request("empty", 1, withDate("")),
	}

	tests := []struct {
		key  models.SortKey
		want []string
	}{
		{models.SortNearestDate, []string{"early", "mid", "late", "bad", "empty"}},
		{models.SortNewest, []string{"bad", "empty", "late", "mid", "early"}},
		{models.SortKey("whatever"), []string{"bad", "empty", "late", "mid", "early"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(listings, tt.key)))
		})
	}
}

func TestSortStableAcrossCalls(t *testing.T) {
	var listings []models.Listing
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		listings = append(listings, request(id, 100))
	}

	first := Sort(listings, models.SortNewest)
	for i := 0; i < 5; i++ {
		assert.Equal(t, ids(first), ids(Sort(listings, models.SortNewest)))
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(first))
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, Sort(nil, models.SortLowestPrice))
}
