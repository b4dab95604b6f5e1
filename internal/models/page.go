package models

import "time"

// Card is a listing prepared for display.
type Card struct {
	Listing
	DisplayTitle    string   `json:"display_title"`
	FromLabel       string   `json:"from_label"`
	ToLabel         string   `json:"to_label"`
	PriceLabel      string   `json:"price_label"`
	RemainingWeight *float64 `json:"remaining_weight,omitempty"`
	Bookmarked      bool     `json:"bookmarked"`
}

// PageView is what the display layer renders for one browse state.
type PageView struct {
	SessionID            string         `json:"session_id,omitempty"`
	Tab                  Tab            `json:"tab"`
	Sort                 SortKey        `json:"sort"`
	Criteria             FilterCriteria `json:"criteria"`
	Page                 int            `json:"page"`
	PageSize             int            `json:"page_size"`
	PageCount            int            `json:"page_count"`
	Total                int            `json:"total"`
	SourceTotal          int            `json:"source_total"`
	HasNext              bool           `json:"has_next"`
	HasPrev              bool           `json:"has_prev"`
	AnyFilterActive      bool           `json:"any_filter_active"`
	AdvancedFilterActive bool           `json:"advanced_filter_active"`
	OpenItemID           *string        `json:"open_item_id,omitempty"`
	Items                []Card         `json:"items"`
	FetchedAt            time.Time      `json:"fetched_at"`
	Notice               *Notification  `json:"notice,omitempty"`
}

// NotificationKind classifies a user-visible notice.
type NotificationKind string

const (
	NoticeSuccess         NotificationKind = "success"
	NoticeUnauthenticated NotificationKind = "unauthenticated"
	NoticeRejected        NotificationKind = "rejected"
	NoticeConnection      NotificationKind = "connection"
)

// Notification is a message the display layer shows to the user.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}
