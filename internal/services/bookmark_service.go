package services

import (
	"context"
	"strings"

	"fakhiuBack/internal/models"
	"fakhiuBack/internal/repositories"
)

type BookmarkKey struct {
	Collection models.Tab
	ListingID  string
}

type BookmarkService struct {
	BookmarkRepo *repositories.BookmarkRepository
}

// Toggle flips the bookmark and reports whether it is now set.
func (s *BookmarkService) Toggle(ctx context.Context, b models.Bookmark) (bool, error) {
	tab, ok := models.ParseTab(string(b.Collection))
	if !ok {
		return false, models.ErrInvalidTab
	}
	if strings.TrimSpace(b.ListingID) == "" {
		return false, models.ErrInvalidBookmark
	}
	b.Collection = tab
	return s.BookmarkRepo.ToggleBookmark(ctx, b)
}

func (s *BookmarkService) GetBookmarksByUser(ctx context.Context, userKey string) ([]models.Bookmark, error) {
	return s.BookmarkRepo.GetBookmarksByUser(ctx, userKey)
}

// Set returns the user's bookmarks keyed for lookup.
func (s *BookmarkService) Set(ctx context.Context, userKey string) (map[BookmarkKey]bool, error) {
	list, err := s.BookmarkRepo.GetBookmarksByUser(ctx, userKey)
	if err != nil {
		return nil, err
	}
	set := make(map[BookmarkKey]bool, len(list))
	for _, b := range list {
		set[BookmarkKey{Collection: b.Collection, ListingID: b.ListingID}] = true
	}
	return set, nil
}
