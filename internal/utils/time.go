package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
	layoutLong     = "January 2, 2006"

	InvalidDate = "Invalid date"
)

// backendLayouts are the timestamp shapes the loan backend emits.
var backendLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	layoutDateTime,
	layoutDate,
}

// ParseTimestamp accepts any of the backend layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range backendLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatLongDate renders "March 1, 2025"; unparsable input renders InvalidDate.
func FormatLongDate(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return InvalidDate
	}
	return t.Format(layoutLong)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(layoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}
