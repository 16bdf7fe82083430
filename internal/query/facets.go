package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// TagCloudSize is the number of tags shown in the tag cloud.
const TagCloudSize = 20

// Facet is one distinct value of a field with the number of jobs holding it.
type Facet struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets groups the distinct values the board offers as filter options.
type Facets struct {
	Locations []Facet `json:"locations"`
	Types     []Facet `json:"types"`
	Levels    []Facet `json:"levels"`
	Tags      []Facet `json:"tags"`
}

// Field names accepted by UniqueValues.
const (
	FacetLocation = "location"
	FacetType     = "type"
	FacetLevel    = "level"
	FacetCompany  = "company"
)

func fieldValue(j core.Job, field string) string {
	switch field {
	case FacetLocation:
		return j.Location
	case FacetType:
		return string(j.Type)
	case FacetLevel:
		return string(j.Level)
	case FacetCompany:
		return j.Company
	default:
		return ""
	}
}

// UniqueValues counts the distinct non-empty values of field, sorted by
// value with locale-aware comparison.
func UniqueValues(jobs []core.Job, field string) []Facet {
	counts := make(map[string]int)
	for _, j := range jobs {
		if v := fieldValue(j, field); v != "" {
			counts[v]++
		}
	}

	out := make([]Facet, 0, len(counts))
	for v, n := range counts {
		out = append(out, Facet{Value: v, Count: n})
	}

	c := collate.New(language.English)
	slices.SortFunc(out, func(a, b Facet) int {
		if n := c.CompareString(a.Value, b.Value); n != 0 {
			return n
		}
		return strings.Compare(a.Value, b.Value)
	})
	return out
}

// UniqueTags counts tags across jobs, most frequent first. Ties keep the
// order in which tags first appear. limit <= 0 returns every tag.
func UniqueTags(jobs []core.Job, limit int) []Facet {
	index := make(map[string]int)
	var out []Facet
	for _, j := range jobs {
		for _, t := range j.Tags {
			if t == "" {
				continue
			}
			if i, ok := index[t]; ok {
				out[i].Count++
				continue
			}
			index[t] = len(out)
			out = append(out, Facet{Value: t, Count: 1})
		}
	}

	slices.SortStableFunc(out, func(a, b Facet) int {
		return b.Count - a.Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Facet{}
	}
	return out
}

// BuildFacets computes every facet the board sidebar shows.
func BuildFacets(jobs []core.Job) Facets {
	return Facets{
		Locations: UniqueValues(jobs, FacetLocation),
		Types:     UniqueValues(jobs, FacetType),
		Levels:    UniqueValues(jobs, FacetLevel),
		Tags:      UniqueTags(jobs, TagCloudSize),
	}
}
