package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/repositories"
	"fakhiuBack/internal/session"
)

type stubStore struct {
	snap      models.Snapshot
	refreshes int
	forgotten int
}

func (s *stubStore) Get(context.Context, string) (models.Snapshot, error) { return s.snap, nil }

func (s *stubStore) Invalidate(context.Context, string) { s.forgotten++ }

func (s *stubStore) Refresh(context.Context, string) (models.Snapshot, error) {
	s.refreshes++
	return s.snap, nil
}

func listingAt(tab models.Tab, id string, price float64) models.Listing {
	return models.Listing{
		ID:         id,
		Collection: tab,
		RouteFrom:  "Osaka, Japan",
		RouteTo:    "Bangkok, Thailand",
		FlightDate: "2025-06-01",
		Rates:      []models.Rate{{Price: models.NumericPrice(price), Weight: "1kg"}},
	}
}

func newSessionService(t *testing.T, requests, offers int) (*SessionService, *stubCreator) {
	t.Helper()
	snap := models.Snapshot{}
	for i := 1; i <= requests; i++ {
		snap.Requests = append(snap.Requests, listingAt(models.TabRequests, fmt.Sprintf("r%d", i), float64(i)))
	}
	for i := 1; i <= offers; i++ {
		snap.Offers = append(snap.Offers, listingAt(models.TabOffers, fmt.Sprintf("%d", i), float64(i)))
	}
	creator := &stubCreator{}
	return &SessionService{
		Sessions: session.NewRegistry(),
		Market:   &MarketplaceService{Store: &stubStore{snap: snap}},
		Requests: &RequestService{Backend: creator},
	}, creator
}

var alice = Caller{Token: "tok-a", Owner: "owner-a", UserKey: "user-a"}

func TestSessionPaging(t *testing.T) {
	svc, _ := newSessionService(t, 15, 3)
	ctx := context.Background()

	view, err := svc.Create(ctx, alice)
	require.NoError(t, err)
	id := view.SessionID
	assert.Len(t, view.Items, 12)
	assert.True(t, view.HasNext)
	assert.False(t, view.HasPrev)

	view, err = svc.Next(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Page)
	assert.Len(t, view.Items, 3)
	assert.False(t, view.HasNext)

	view, err = svc.Next(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Page, "next is a no-op on the last page")

	view, err = svc.SelectTab(ctx, alice, id, models.TabOffers)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, models.TabOffers, view.Tab)

	_, err = svc.View(ctx, Caller{Token: "tok-b", Owner: "owner-b"}, id)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSessionFilters(t *testing.T) {
	svc, _ := newSessionService(t, 30, 0)
	ctx := context.Background()
	view, err := svc.Create(ctx, alice)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.Next(ctx, alice, id)
	require.NoError(t, err)

	view, err = svc.SetCriteria(ctx, alice, id, models.FilterCriteria{PriceRange: models.Range{Min: models.ParseBound("20")}})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 11, view.Total)
	assert.Equal(t, 30, view.SourceTotal)
	assert.True(t, view.AdvancedFilterActive)

	view, err = svc.SetSort(ctx, alice, id, models.SortLowestPrice)
	require.NoError(t, err)
	require.NotEmpty(t, view.Items)
	assert.Equal(t, "r20", view.Items[0].ID)

	view, err = svc.ClearCriteria(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 30, view.Total)
	assert.False(t, view.AnyFilterActive)
}

func TestSessionOpenAndSubmit(t *testing.T) {
	svc, creator := newSessionService(t, 2, 2)
	ctx := context.Background()
	view, err := svc.Create(ctx, alice)
	require.NoError(t, err)
	id := view.SessionID

	_, err = svc.Open(ctx, alice, id, "2")
	assert.ErrorIs(t, err, models.ErrListingNotFound, "offer ids are not visible on the requests tab")

	view, err = svc.Open(ctx, alice, id, "r1")
	require.NoError(t, err)
	require.NotNil(t, view.OpenItemID)

	_, err = svc.SetForm(ctx, alice, id, models.RequestForm{ItemName: "Tea", Amount: "300"})
	require.NoError(t, err)

	view, err = svc.Submit(ctx, alice, id)
	require.NoError(t, err)
	require.Len(t, creator.got, 1)
	assert.Nil(t, creator.got[0].OfferID, "requests tab items are not offers")
	assert.Nil(t, view.OpenItemID)
	require.NotNil(t, view.Notice)
	assert.Equal(t, models.NoticeSuccess, view.Notice.Kind)
	assert.Equal(t, msgCarryOffered, view.Notice.Message)

	_, err = svc.SelectTab(ctx, alice, id, models.TabOffers)
	require.NoError(t, err)
	_, err = svc.Open(ctx, alice, id, "2")
	require.NoError(t, err)
	_, err = svc.SetForm(ctx, alice, id, models.RequestForm{ItemName: "Snacks"})
	require.NoError(t, err)

	creator.err = models.ErrUnauthenticated
	view, err = svc.Submit(ctx, alice, id)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	require.Len(t, creator.got, 2)
	assert.Equal(t, 2, creator.got[1].OfferID)
	require.NotNil(t, view.OpenItemID, "failed submissions keep the item open")
	assert.Equal(t, models.NoticeUnauthenticated, view.Notice.Kind)

	sess, err := svc.Get(alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Snacks", sess.State().Form.ItemName)
}

func TestRenderMarksBookmarks(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	repo := &repositories.BookmarkRepository{DB: db, Driver: "sqlite"}
	require.NoError(t, repo.EnsureSchema(context.Background()))
	bookmarks := &BookmarkService{BookmarkRepo: repo}

	on, err := bookmarks.Toggle(context.Background(), models.Bookmark{UserKey: "user-a", Collection: "requests", ListingID: "r2"})
	require.NoError(t, err)
	assert.True(t, on)

	_, err = bookmarks.Toggle(context.Background(), models.Bookmark{UserKey: "user-a", Collection: "nope", ListingID: "r2"})
	assert.ErrorIs(t, err, models.ErrInvalidTab)
	_, err = bookmarks.Toggle(context.Background(), models.Bookmark{UserKey: "user-a", Collection: "offers"})
	assert.ErrorIs(t, err, models.ErrInvalidBookmark)

	market := &MarketplaceService{
		Store: &stubStore{snap: models.Snapshot{Requests: []models.Listing{
			listingAt(models.TabRequests, "r1", 1),
			listingAt(models.TabRequests, "r2", 2),
		}}},
		Bookmarks: bookmarks,
	}

	view, err := market.Listings(context.Background(), "tok", "user-a", models.Query{Page: 1, Sort: models.SortLowestPrice})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.False(t, view.Items[0].Bookmarked)
	assert.True(t, view.Items[1].Bookmarked)

	view, err = market.Listings(context.Background(), "tok", "", models.Query{Page: 1})
	require.NoError(t, err)
	for _, item := range view.Items {
		assert.False(t, item.Bookmarked)
	}
}
