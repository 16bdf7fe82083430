// Package templates holds the templ components of the job board and the
// plain Go helpers they call. Edit the .templ files and run templ generate.
package templates

import (
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/query"
)

// BoardData is everything the board page renders.
type BoardData struct {
	Jobs     []core.Job
	Total    int
	Page     int
	HasMore  bool
	Filters  query.FiltersState
	Facets   query.Facets
	Source   string
	LoadedAt time.Time
	Now      time.Time
}

var sortLabels = map[query.SortKey]string{
	query.SortNewest:       "Newest first",
	query.SortOldest:       "Oldest first",
	query.SortSalaryHigh:   "Salary: high to low",
	query.SortSalaryLow:    "Salary: low to high",
	query.SortAlphabetical: "Title A-Z",
}

func tagSelected(f query.FiltersState, tag string) bool {
	return slices.Contains(f.Tags, tag)
}

// tagToggleURL is the board URL with tag added to or removed from f.
func tagToggleURL(f query.FiltersState, tag string) string {
	if tagSelected(f, tag) {
		return PageURL(f.WithoutTag(tag), 1)
	}
	return PageURL(f.WithTag(tag), 1)
}

func sourceSuffix(source string) string {
	if source == "" {
		return ""
	}
	return " from " + source
}

// PageURL is the board URL for f at page. Page 1 is implied.
func PageURL(f query.FiltersState, page int) string {
	v := f.Values()
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return urlWithQuery("/", v)
}

func urlWithQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
