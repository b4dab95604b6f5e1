package listing

import (
	"fakhiuBack/internal/models"
)

// Result is one run of the pipeline over a snapshot.
type Result struct {
	Query       models.Query
	Window      Window
	SourceTotal int
	// Items is the requested page with listings that cannot be displayed
	// removed. Window counts are computed before that removal.
	Items []models.Listing
}

// Run filters, sorts and paginates one collection of the snapshot. It is
// a pure function of its inputs.
func Run(snapshot models.Snapshot, q models.Query) Result {
	q.Sort = models.ParseSortKey(string(q.Sort))
	if q.Tab != models.TabOffers {
		q.Tab = models.TabRequests
	}

	source := snapshot.Collection(q.Tab)
	eligible := Filter(source, models.FilterCriteria{}, q.Tab)
	filtered := Filter(source, q.Criteria, q.Tab)
	ordered := Sort(filtered, q.Sort)
	page := Paginate(ordered, q.Page, PageSize)

	items := make([]models.Listing, 0, len(page))
	for _, l := range page {
		if l.Displayable() {
			items = append(items, l)
		}
	}

	return Result{
		Query:       q,
		Window:      NewWindow(q.Page, len(filtered), PageSize),
		SourceTotal: len(eligible),
		Items:       items,
	}
}

// PageView assembles the display payload. bookmarked may be nil.
func (r Result) PageView(snapshot models.Snapshot, bookmarked func(models.Listing) bool) models.PageView {
	cards := make([]models.Card, 0, len(r.Items))
	for _, l := range r.Items {
		cards = append(cards, NewCard(l, bookmarked != nil && bookmarked(l)))
	}
	return models.PageView{
		Tab:                  r.Query.Tab,
		Sort:                 r.Query.Sort,
		Criteria:             r.Query.Criteria,
		Page:                 r.Window.Page,
		PageSize:             PageSize,
		PageCount:            r.Window.PageCount,
		Total:                r.Window.Total,
		SourceTotal:          r.SourceTotal,
		HasNext:              r.Window.HasNext,
		HasPrev:              r.Window.HasPrev,
		AnyFilterActive:      r.Query.Criteria.AnyActive(),
		AdvancedFilterActive: r.Query.Criteria.AdvancedActive(),
		Items:                cards,
		FetchedAt:            snapshot.FetchedAt,
	}
}
