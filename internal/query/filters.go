package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// SortKey selects the ordering of a result.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortSalaryHigh   SortKey = "salary-high"
	SortSalaryLow    SortKey = "salary-low"
	SortAlphabetical SortKey = "alphabetical"
)

// SortKeys lists every SortKey in display order.
var SortKeys = []SortKey{SortNewest, SortOldest, SortSalaryHigh, SortSalaryLow, SortAlphabetical}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// Default bounds of the salary range filter.
const (
	DefaultSalaryMin = 0
	DefaultSalaryMax = 200000
)

// URL query parameter names.
const (
	ParamSearch    = "q"
	ParamLocation  = "location"
	ParamType      = "type"
	ParamLevel     = "level"
	ParamTags      = "tags"
	ParamSalaryMin = "salaryMin"
	ParamSalaryMax = "salaryMax"
	ParamRemote    = "remote"
	ParamSort      = "sort"
)

// FiltersState is the complete set of search, filter and sort parameters.
// The zero value is not the default state; use DefaultFilters.
type FiltersState struct {
	Search      string       `json:"search"`
	Location    string       `json:"location"`
	Type        core.JobType `json:"type"`
	Level       core.Level   `json:"level"`
	Tags        []string     `json:"tags"`
	SalaryRange [2]int       `json:"salaryRange"`
	RemoteOnly  bool         `json:"remoteOnly"`
	Sort        SortKey      `json:"sort"`
}

// DefaultFilters returns the state with nothing selected.
func DefaultFilters() FiltersState {
	return FiltersState{
		Tags:        []string{},
		SalaryRange: [2]int{DefaultSalaryMin, DefaultSalaryMax},
		Sort:        SortNewest,
	}
}

// FromValues reads a FiltersState from URL query parameters. Absent or
// invalid parameters keep their default. A reversed salary range is swapped
// so the lower bound never exceeds the upper one.
func FromValues(v url.Values) FiltersState {
	f := DefaultFilters()

	f.Search = v.Get(ParamSearch)
	f.Location = v.Get(ParamLocation)
	f.Type = core.JobType(v.Get(ParamType))
	f.Level = core.Level(v.Get(ParamLevel))

	if tags := v.Get(ParamTags); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamSalaryMin))); err == nil {
		f.SalaryRange[0] = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamSalaryMax))); err == nil {
		f.SalaryRange[1] = n
	}
	if f.SalaryRange[0] > f.SalaryRange[1] {
		f.SalaryRange[0], f.SalaryRange[1] = f.SalaryRange[1], f.SalaryRange[0]
	}

	f.RemoteOnly = v.Get(ParamRemote) == "true"

	if s := SortKey(v.Get(ParamSort)); s.Valid() {
		f.Sort = s
	}
	return f
}

// Values encodes f as URL query parameters. Only fields that differ from
// DefaultFilters are emitted.
func (f FiltersState) Values() url.Values {
	v := url.Values{}
	def := DefaultFilters()

	if f.Search != "" {
		v.Set(ParamSearch, f.Search)
	}
	if f.Location != "" {
		v.Set(ParamLocation, f.Location)
	}
	if f.Type != "" {
		v.Set(ParamType, string(f.Type))
	}
	if f.Level != "" {
		v.Set(ParamLevel, string(f.Level))
	}
	if len(f.Tags) > 0 {
		v.Set(ParamTags, strings.Join(f.Tags, ","))
	}
	if f.SalaryRange[0] != def.SalaryRange[0] {
		v.Set(ParamSalaryMin, strconv.Itoa(f.SalaryRange[0]))
	}
	if f.SalaryRange[1] != def.SalaryRange[1] {
		v.Set(ParamSalaryMax, strconv.Itoa(f.SalaryRange[1]))
	}
	if f.RemoteOnly {
		v.Set(ParamRemote, "true")
	}
	if f.Sort != "" && f.Sort != def.Sort {
		v.Set(ParamSort, string(f.Sort))
	}
	return v
}

// Encode returns the canonical query string for f, empty for the default state.
func (f FiltersState) Encode() string {
	return f.Values().Encode()
}

// HasActiveFilters reports whether any field differs from DefaultFilters.
func HasActiveFilters(f FiltersState) bool {
	return len(f.Values()) > 0
}

// WithoutTag returns a copy of f with tag removed from the selection.
func (f FiltersState) WithoutTag(tag string) FiltersState {
	out := f
	out.Tags = slices.DeleteFunc(slices.Clone(f.Tags), func(t string) bool { return t == tag })
	return out
}

// WithTag returns a copy of f with tag added to the selection if absent.
func (f FiltersState) WithTag(tag string) FiltersState {
	out := f
	out.Tags = slices.Clone(f.Tags)
	if !slices.Contains(out.Tags, tag) {
		out.Tags = append(out.Tags, tag)
	}
	return out
}
