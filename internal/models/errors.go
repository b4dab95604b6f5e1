package models

import (
	"errors"
)

var (
	ErrNoRecord         = errors.New("models: no matching record found")
	ErrSessionNotFound  = errors.New("models: session not found")
	ErrListingNotFound  = errors.New("models: listing not found")
	ErrNoOpenItem       = errors.New("models: no item is open")
	ErrUnauthenticated  = errors.New("models: unauthenticated")
	ErrInvalidCriteria  = errors.New("models: invalid criteria")
	ErrInvalidTab       = errors.New("models: invalid tab")
	ErrInvalidImageData = errors.New("models: invalid image data")
	ErrInvalidBookmark  = errors.New("models: bookmark needs a listing id")
	ErrRateLimited      = errors.New("models: too many submissions")
)
