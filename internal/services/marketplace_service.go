package services

import (
	"context"

	"fakhiuBack/internal/listing"
	"fakhiuBack/internal/models"
)

// SnapshotStore is the part of the listing store the services use.
type SnapshotStore interface {
	Get(ctx context.Context, token string) (models.Snapshot, error)
	Refresh(ctx context.Context, token string) (models.Snapshot, error)
	Invalidate(ctx context.Context, token string)
}

type MarketplaceService struct {
	Store     SnapshotStore
	Bookmarks *BookmarkService
	Log       Logger
}

// Snapshot returns the token's listings, loading them on first use.
func (s *MarketplaceService) Snapshot(ctx context.Context, token string) (models.Snapshot, error) {
	return s.Store.Get(ctx, token)
}

// Refresh reloads the token's listings from the backend.
func (s *MarketplaceService) Refresh(ctx context.Context, token string) (models.Snapshot, error) {
	return s.Store.Refresh(ctx, token)
}

// Forget drops the token's listings, e.g. after the user signs out.
func (s *MarketplaceService) Forget(ctx context.Context, token string) {
	s.Store.Invalidate(ctx, token)
}

// Listings runs the pipeline for a one-off query.
func (s *MarketplaceService) Listings(ctx context.Context, token, userKey string, q models.Query) (models.PageView, error) {
	snap, err := s.Store.Get(ctx, token)
	if err != nil {
		return models.PageView{}, err
	}
	return s.Render(ctx, snap, userKey, q), nil
}

// Render builds the page view of q over snap, marking the user's
// bookmarks. Bookmark lookup failures only lose the marks.
func (s *MarketplaceService) Render(ctx context.Context, snap models.Snapshot, userKey string, q models.Query) models.PageView {
	res := listing.Run(snap, q)
	return res.PageView(snap, s.bookmarkedFunc(ctx, userKey))
}

// Total is the number of listings matching q, before paging.
func (s *MarketplaceService) Total(snap models.Snapshot, q models.Query) int {
	return listing.Run(snap, q).Window.Total
}

func (s *MarketplaceService) bookmarkedFunc(ctx context.Context, userKey string) func(models.Listing) bool {
	if s.Bookmarks == nil || userKey == "" {
		return nil
	}
	set, err := s.Bookmarks.Set(ctx, userKey)
	if err != nil {
		if s.Log != nil {
			s.Log.Errorf("load bookmarks: %v", err)
		}
		return nil
	}
	return func(l models.Listing) bool {
		return set[BookmarkKey{Collection: l.Collection, ListingID: l.ID}]
	}
}
