package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/web/templates"
)

// summaryTable renders the row counts of one parse.
func summaryTable(source string, r *core.ParsedCSVResult) (string, error) {
	data := pterm.TableData{
		{"Source", "Rows", "Valid", "Rejected"},
		{source, strconv.Itoa(r.TotalRows), strconv.Itoa(r.ValidRows), strconv.Itoa(len(r.Errors))},
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}

// jobsTable renders jobs one per row.
func jobsTable(jobs []core.Job, now time.Time) (string, error) {
	data := pterm.TableData{{"ID", "Title", "Company", "Location", "Type", "Level", "Salary", "Posted", "Tags"}}
	for _, j := range jobs {
		data = append(data, []string{
			j.ID,
			j.Title,
			j.Company,
			j.Location,
			string(j.Type),
			string(j.Level),
			salaryCell(j),
			templates.TimeAgo(j.PostedTime(now), now),
			strings.Join(j.Tags, ", "),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// salaryCell colors the salary range by its upper end.
func salaryCell(j core.Job) string {
	s := templates.SalaryRange(j.SalaryMin, j.SalaryMax)
	if s == "" {
		return pterm.Gray("n/a")
	}
	top := 0
	if j.SalaryMax != nil {
		top = *j.SalaryMax
	} else if j.SalaryMin != nil {
		top = *j.SalaryMin
	}
	switch {
	case top >= 150000:
		return pterm.Green(s)
	case top >= 80000:
		return pterm.Yellow(s)
	}
	return s
}

// errorList renders at most limit row errors. limit <= 0 renders all.
func errorList(errs []string, limit int) string {
	if len(errs) == 0 {
		return ""
	}
	shown := errs
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	var b strings.Builder
	for _, e := range shown {
		b.WriteString("  - " + e + "\n")
	}
	if rest := len(errs) - len(shown); rest > 0 {
		b.WriteString("  ... and " + strconv.Itoa(rest) + " more\n")
	}
	return b.String()
}

// pageFooter describes where a page sits in the full result.
func pageFooter(p catalog.Page) string {
	s := "Showing " + strconv.Itoa(len(p.Jobs)) + " of " + templates.Count(p.Total) + " " +
		templates.Plural(p.Total, "job", "jobs")
	if p.HasMore {
		s += " (more with --page " + strconv.Itoa(p.Page+1) + ")"
	}
	return s
}
