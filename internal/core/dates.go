package core

import (
	"strings"
	"time"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts in the order they are tried. ISO forms come first.
var (
	isoLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		time.RFC1123Z,
		time.RFC1123,
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02",
		"01/02/2006", "1/2/2006",
		"01-02-2006", "1-2-2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06",
	}
)

// ParseDate parses a posting date, falling back to the current time.
func ParseDate(s string) time.Time {
	return ParseDateAt(s, time.Now())
}

// ParseDateAt parses s using the known layouts and returns now when s is
// empty or matches none of them. Malformed dates therefore read as
// "posted now" and sort first under newest.
func ParseDateAt(s string, now time.Time) time.Time {
	if t, ok := parseDate(s, now); ok {
		return t
	}
	return now
}

// IsParsableDate reports whether s matches one of the known layouts.
func IsParsableDate(s string) bool {
	_, ok := parseDate(s, time.Now())
	return ok
}

func parseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := now.Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}
