package templates

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Currency formats a whole-dollar amount, e.g. "$120,000".
func Currency(n int) string {
	return "$" + humanize.Comma(int64(n))
}

// SalaryRange formats the salary bounds of a job. Zero bounds count as
// absent. It returns "" when neither bound is set.
func SalaryRange(min, max *int) string {
	lo, hi := deref(min), deref(max)
	switch {
	case lo > 0 && hi > 0:
		return Currency(lo) + " - " + Currency(hi)
	case lo > 0:
		return "From " + Currency(lo)
	case hi > 0:
		return "Up to " + Currency(hi)
	}
	return ""
}

// CompactSalary formats n for the range slider labels, e.g. "$90K".
func CompactSalary(n int) string {
	switch {
	case n >= 1_000_000:
		return "$" + strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1000:
		return fmt.Sprintf("$%dK", (n+500)/1000)
	}
	return "$" + strconv.Itoa(n)
}

// TimeAgo describes how long before now t was: "Just now", "5m ago",
// "3h ago", "2d ago", "1w ago", or the date itself after 30 days.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d/(7*24*time.Hour)))
	}
	return t.Format("Jan 2, 2006")
}

// Count formats n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Plural returns singular when n is 1 and plural otherwise.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
