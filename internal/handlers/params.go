package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fakhiuBack/internal/models"
)

// getParam returns a path or query parameter value regardless of whether
// the router stores it with a leading colon or not.
func getParam(r *http.Request, name string) string {
	if r == nil {
		return ""
	}

	if val := r.URL.Query().Get(":" + name); val != "" {
		return val
	}

	if val := r.URL.Query().Get(name); val != "" {
		return val
	}

	return r.PathValue(name)
}

// parseQuery reads a pipeline query from the URL. Malformed values are
// rejected rather than ignored.
func parseQuery(r *http.Request) (models.Query, error) {
	q := r.URL.Query()

	tab, ok := models.ParseTab(q.Get("tab"))
	if !ok {
		return models.Query{}, fmt.Errorf("%w: unknown tab %q", models.ErrInvalidTab, q.Get("tab"))
	}

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return models.Query{}, fmt.Errorf("%w: invalid page", models.ErrInvalidCriteria)
		}
		page = p
	}

	c := models.FilterCriteria{
		Search:  q.Get("search"),
		Country: q.Get("country"),
		Status:  q.Get("status"),
		DateRange: models.DateRange{
			From: strings.TrimSpace(q.Get("date_from")),
			To:   strings.TrimSpace(q.Get("date_to")),
		},
		ItemTypes: splitCSV(q.Get("item_types")),
	}

	var err error
	if c.PriceRange.Min, err = parseBound(q.Get("price_min"), "price_min"); err != nil {
		return models.Query{}, err
	}
	if c.PriceRange.Max, err = parseBound(q.Get("price_max"), "price_max"); err != nil {
		return models.Query{}, err
	}
	if c.WeightRange.Min, err = parseBound(q.Get("weight_min"), "weight_min"); err != nil {
		return models.Query{}, err
	}
	if c.WeightRange.Max, err = parseBound(q.Get("weight_max"), "weight_max"); err != nil {
		return models.Query{}, err
	}
	if v := q.Get("rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return models.Query{}, fmt.Errorf("%w: invalid rating", models.ErrInvalidCriteria)
		}
		c.RatingThreshold = rating
	}
	if c.VerifiedOnly, err = parseFlag(q.Get("verified"), "verified"); err != nil {
		return models.Query{}, err
	}
	if c.UrgentOnly, err = parseFlag(q.Get("urgent"), "urgent"); err != nil {
		return models.Query{}, err
	}
	if err := c.Validate(); err != nil {
		return models.Query{}, fmt.Errorf("%w: %v", models.ErrInvalidCriteria, err)
	}

	return models.Query{
		Tab:      tab,
		Criteria: c,
		Sort:     models.ParseSortKey(q.Get("sort")),
		Page:     page,
	}, nil
}

func parseBound(v, name string) (*float64, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	b := models.ParseBound(v)
	if b == nil {
		return nil, fmt.Errorf("%w: invalid %s", models.ErrInvalidCriteria, name)
	}
	return b, nil
}

func parseFlag(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s", models.ErrInvalidCriteria, name)
	}
	return b, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
