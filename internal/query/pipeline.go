// Package query evaluates a FiltersState against the in-memory job collection.
//
// Every function here is pure: it never modifies its input slice and returns
// the same output for the same (jobs, filters, now).
package query

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// DefaultPageSize is the number of jobs added by each "load more".
const DefaultPageSize = 12

var (
	nonWordRegex    = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// NormalizeSearchString lower-cases and trims s, turns punctuation into
// spaces and collapses whitespace runs.
func NormalizeSearchString(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = nonWordRegex.ReplaceAllString(s, " ")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// searchText is the normalized text a job is matched against.
func searchText(j core.Job) string {
	parts := make([]string, 0, 6+len(j.Tags))
	parts = append(parts, j.Title, j.Company, j.Location, j.Description)
	parts = append(parts, j.Tags...)
	parts = append(parts, string(j.Type), string(j.Level))
	return NormalizeSearchString(strings.Join(parts, " "))
}

// Search keeps jobs whose searchable text contains every term of q.
// An empty query keeps everything.
func Search(jobs []core.Job, q string) []core.Job {
	terms := strings.Fields(NormalizeSearchString(q))
	if len(terms) == 0 {
		return slices.Clone(jobs)
	}

	out := make([]core.Job, 0, len(jobs))
	for _, j := range jobs {
		text := searchText(j)
		matched := true
		for _, term := range terms {
			if !strings.Contains(text, term) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, j)
		}
	}
	return out
}

// Filter keeps jobs that pass every predicate in f. The search string and
// sort key are ignored.
func Filter(jobs []core.Job, f FiltersState) []core.Job {
	location := strings.ToLower(f.Location)
	tags := make([]string, len(f.Tags))
	for i, t := range f.Tags {
		tags[i] = strings.ToLower(t)
	}

	out := make([]core.Job, 0, len(jobs))
	for _, j := range jobs {
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		if f.Type != "" && j.Type != f.Type {
			continue
		}
		if f.Level != "" && j.Level != f.Level {
			continue
		}
		if len(tags) > 0 && !matchesAnyTag(j.Tags, tags) {
			continue
		}
		if j.SalaryMin != nil && *j.SalaryMin < f.SalaryRange[0] {
			continue
		}
		if j.SalaryMax != nil && *j.SalaryMax > f.SalaryRange[1] {
			continue
		}
		if f.RemoteOnly && !j.RemoteFriendly {
			continue
		}
		out = append(out, j)
	}
	return out
}

// matchesAnyTag reports whether any selected tag is a substring of any job
// tag. selected must already be lower-case.
func matchesAnyTag(jobTags, selected []string) bool {
	for _, jt := range jobTags {
		jt = strings.ToLower(jt)
		for _, s := range selected {
			if strings.Contains(jt, s) {
				return true
			}
		}
	}
	return false
}

// Sort returns a stably sorted copy of jobs. Unparsable posting dates
// count as now. An unknown key keeps the input order.
func Sort(jobs []core.Job, key SortKey, now time.Time) []core.Job {
	out := slices.Clone(jobs)

	switch key {
	case SortNewest, SortOldest:
		dated := make([]datedJob, len(out))
		for i, j := range out {
			dated[i] = datedJob{job: j, posted: j.PostedTime(now)}
		}
		slices.SortStableFunc(dated, func(a, b datedJob) int {
			if key == SortNewest {
				return b.posted.Compare(a.posted)
			}
			return a.posted.Compare(b.posted)
		})
		for i := range dated {
			out[i] = dated[i].job
		}

	case SortSalaryHigh:
		slices.SortStableFunc(out, func(a, b core.Job) int {
			return cmp.Compare(highSalary(b), highSalary(a))
		})

	case SortSalaryLow:
		slices.SortStableFunc(out, func(a, b core.Job) int {
			return cmp.Compare(lowSalary(a), lowSalary(b))
		})

	case SortAlphabetical:
		// Collators are not safe for concurrent use.
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b core.Job) int {
			return c.CompareString(a.Title, b.Title)
		})
	}

	return out
}

type datedJob struct {
	job    core.Job
	posted time.Time
}

// highSalary is the salary used for salary-high: max, else min, else 0.
func highSalary(j core.Job) int {
	switch {
	case j.SalaryMax != nil && *j.SalaryMax != 0:
		return *j.SalaryMax
	case j.SalaryMin != nil:
		return *j.SalaryMin
	default:
		return 0
	}
}

// lowSalary is the salary used for salary-low: min, else max, else 0.
func lowSalary(j core.Job) int {
	switch {
	case j.SalaryMin != nil && *j.SalaryMin != 0:
		return *j.SalaryMin
	case j.SalaryMax != nil:
		return *j.SalaryMax
	default:
		return 0
	}
}

// Apply runs search, filter and sort in that order.
func Apply(jobs []core.Job, f FiltersState, now time.Time) []core.Job {
	out := Search(jobs, f.Search)
	out = Filter(out, f)
	return Sort(out, f.Sort, now)
}

// Paginate returns the first page*pageSize jobs. Pages below 1 count as 1.
func Paginate(jobs []core.Job, page, pageSize int) []core.Job {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	end := min(page*pageSize, len(jobs))
	return jobs[:end]
}

// HasMore reports whether a page leaves jobs unshown.
func HasMore(total, page, pageSize int) bool {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page*pageSize < total
}
