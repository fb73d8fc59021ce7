package domain

import (
	"errors"
	"time"
)

// DateLayout is the key format of every civil date handled by the engine.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

// ParseDate parses a YYYY-MM-DD key into a civil date (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// CivilDate returns the calendar day t falls on in loc, as UTC midnight.
// Working with UTC midnights keeps day arithmetic free of DST shifts.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISOWeekday maps time.Weekday to Monday=1 ... Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekStart returns the Monday of the ISO week containing the civil date d.
func WeekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, -(ISOWeekday(d) - 1))
}

// DaysBetween counts whole days from a to b for civil dates.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
