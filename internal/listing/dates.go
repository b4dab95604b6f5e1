package listing

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// parseCalendarDate returns the calendar day a date string falls on, in the
// zone it was written in.
func parseCalendarDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", value)
}

// dateKey orders dates for sorting; unparsable dates get ok=false.
func dateKey(value string) (int64, bool) {
	t, err := parseCalendarDate(value)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}
