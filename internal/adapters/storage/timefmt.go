package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is how every store writes timestamps. It is fixed width so that
// SQL string comparison orders timestamps correctly.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullTime renders t for a nullable column; the zero time becomes NULL.
func NullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// ParseTime accepts the formats stores have written over time.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// ParseNullTime parses a nullable column; NULL or empty yields the zero time.
func ParseNullTime(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}
	t, _ := ParseTime(ns.String)
	return t
}
