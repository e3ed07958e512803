package formula

import (
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDate reads a calendar date. The time of day is dropped.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// AddMonths moves t by whole calendar months, clamping the day to the end of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysBetween returns end - start in whole days, or NaN when either date is
// missing or malformed.
func DaysBetween(start, end string) float64 {
	s, ok := ParseDate(start)
	if !ok {
		return math.NaN()
	}
	return daysFrom(s, end)
}

// DaysBetweenOr is DaysBetween with a fallback start of one month before
// fallback, used when start is unavailable.
func DaysBetweenOr(start, end, fallback string) float64 {
	s, ok := ParseDate(start)
	if !ok {
		f, ok := ParseDate(fallback)
		if !ok {
			return math.NaN()
		}
		s = AddMonths(f, -1)
	}
	return daysFrom(s, end)
}

func daysFrom(start time.Time, end string) float64 {
	e, ok := ParseDate(end)
	if !ok {
		return math.NaN()
	}
	return math.Trunc(e.Sub(start).Hours() / 24)
}

// MonthsBetween counts elapsed whole years as 12 months each, then the whole
// months left after advancing start by those years. Calendar months are
// compared, not day counts.
func MonthsBetween(start, end time.Time) int {
	years := wholeMonths(start, end) / 12
	advanced := AddMonths(start, years*12)
	return years*12 + wholeMonths(advanced, end)
}

func wholeMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	anchor := AddMonths(start, months)
	switch {
	case months > 0 && end.Before(anchor):
		months--
	case months < 0 && end.After(anchor):
		months++
	}
	return months
}
