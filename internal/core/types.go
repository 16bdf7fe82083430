package core

import (
	"strings"
	"time"
)

// JobType is the canonical employment type of a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeFreelance  JobType = "Freelance"
	JobTypeInternship JobType = "Internship"
)

// JobTypes lists every JobType in display order.
var JobTypes = []JobType{
	JobTypeFullTime,
	JobTypePartTime,
	JobTypeContract,
	JobTypeFreelance,
	JobTypeInternship,
}

// Level is the canonical experience level of a posting.
type Level string

const (
	LevelEntry     Level = "Entry"
	LevelJunior    Level = "Junior"
	LevelMid       Level = "Mid"
	LevelSenior    Level = "Senior"
	LevelLead      Level = "Lead"
	LevelPrincipal Level = "Principal"
	LevelDirector  Level = "Director"
)

// Levels lists every Level from most junior to most senior.
var Levels = []Level{
	LevelEntry,
	LevelJunior,
	LevelMid,
	LevelSenior,
	LevelLead,
	LevelPrincipal,
	LevelDirector,
}

// MaxTags is the maximum number of tags kept per job.
const MaxTags = 10

// Job is a normalized job posting. It is built once per accepted CSV row
// and never modified afterwards.
type Job struct {
	ID             string   `json:"id" validate:"required"`
	Title          string   `json:"title" validate:"required"`
	Company        string   `json:"company" validate:"required"`
	Location       string   `json:"location"`
	Type           JobType  `json:"type" validate:"oneof=Full-time Part-time Contract Freelance Internship"`
	Level          Level    `json:"level" validate:"oneof=Entry Junior Mid Senior Lead Principal Director"`
	SalaryMin      *int     `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax      *int     `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
	Tags           []string `json:"tags" validate:"max=10"`
	PostedAt       string   `json:"posted_at"`
	ApplyURL       string   `json:"apply_url,omitempty" validate:"omitempty,url"`
	Description    string   `json:"description"`
	Benefits       string   `json:"benefits,omitempty"`
	Requirements   string   `json:"requirements,omitempty"`
	CompanyLogo    string   `json:"company_logo,omitempty" validate:"omitempty,url"`
	CompanyWebsite string   `json:"company_website,omitempty" validate:"omitempty,url"`
	RemoteFriendly bool     `json:"remote_friendly"`
	Featured       bool     `json:"featured"`
}

// PostedTime returns the parsed posting date, falling back to now.
func (j Job) PostedTime(now time.Time) time.Time {
	return ParseDateAt(j.PostedAt, now)
}

// ParsedCSVResult is the outcome of one parse operation.
//
// Errors holds one human-readable entry per malformed row ("Row N: message").
// A non-empty Errors slice is a warning, not a failure.
type ParsedCSVResult struct {
	Jobs      []Job    `json:"jobs"`
	Errors    []string `json:"errors"`
	TotalRows int      `json:"total_rows"`
	ValidRows int      `json:"valid_rows"`
}

// HeaderIndex maps canonical field names to their positions in the CSV row.
// A field may appear in more than one column when synonyms collide.
type HeaderIndex map[string][]int

// Value returns the first non-empty trimmed cell for field, or "".
func (h HeaderIndex) Value(row []string, field string) string {
	for _, pos := range h[field] {
		if pos < len(row) {
			if v := strings.TrimSpace(row[pos]); v != "" {
				return v
			}
		}
	}
	return ""
}
