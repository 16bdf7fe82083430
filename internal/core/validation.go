package core

// validation.go turns one raw CSV row into a Job or a row-level error.
//
// Validation happens at two levels:
//  1. Explicit rules: required title/company, salary range ordering
//  2. Struct tags on Job, checked by go-playground/validator as a backstop
//
// Malformed optional values never fail a row. They are normalized to a
// default or dropped before the rules run.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrBlankRow is returned by NewJob when every cell in the row is empty.
var ErrBlankRow = errors.New("row is blank")

// ValidationError is a row-level failure. Row is the 1-based CSV line
// number with the header counted as line 1.
type ValidationError struct {
	Row     int    // CSV line number
	Field   string // Canonical field name, empty when not attributable
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	return e.Message
}

// RowOutcome classifies the result of validating one row.
type RowOutcome int

const (
	RowAccepted RowOutcome = iota
	RowSkipped
	RowRejected
)

func (o RowOutcome) String() string {
	switch o {
	case RowAccepted:
		return "accepted"
	case RowSkipped:
		return "skipped"
	case RowRejected:
		return "rejected"
	default:
		return fmt.Sprintf("RowOutcome(%d)", int(o))
	}
}

// RowResult is the outcome of validating one row. Job is set only when
// Outcome is RowAccepted, Err only when it is RowRejected.
type RowResult struct {
	Outcome RowOutcome
	Job     Job
	Err     *ValidationError
}

// RawRow is the bag of trimmed cell values keyed by canonical field name.
type RawRow map[string]string

// IsBlank reports whether every value in the row is empty after trimming.
func (r RawRow) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowValidator builds Jobs from raw rows.
type RowValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewRowValidator creates a validator. now supplies the fallback posting
// date; nil means time.Now.
func NewRowValidator(now func() time.Time) *RowValidator {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &RowValidator{validate: v, now: now}
}

// ValidateRow normalizes row and applies the row rules. index is the
// 0-based position of the row among the data rows.
func (v *RowValidator) ValidateRow(row RawRow, index int) RowResult {
	if row.IsBlank() {
		return RowResult{Outcome: RowSkipped}
	}

	line := index + 2
	reject := func(field, msg string) RowResult {
		return RowResult{
			Outcome: RowRejected,
			Err:     &ValidationError{Row: line, Field: field, Message: msg},
		}
	}

	get := func(field string) string {
		return strings.TrimSpace(row[field])
	}

	title := get(FieldTitle)
	if title == "" {
		return reject(FieldTitle, "Title is required")
	}
	company := get(FieldCompany)
	if company == "" {
		return reject(FieldCompany, "Company is required")
	}

	job := Job{
		ID:             get(FieldID),
		Title:          title,
		Company:        company,
		Location:       get(FieldLocation),
		Type:           NormalizeJobType(get(FieldType)),
		Level:          NormalizeLevel(get(FieldLevel)),
		Tags:           ParseTags(get(FieldTags)),
		PostedAt:       get(FieldPostedAt),
		ApplyURL:       ParseURL(get(FieldApplyURL)),
		Description:    get(FieldDescription),
		Benefits:       get(FieldBenefits),
		Requirements:   get(FieldRequirements),
		CompanyLogo:    ParseURL(get(FieldCompanyLogo)),
		CompanyWebsite: ParseURL(get(FieldCompanyWebsite)),
		RemoteFriendly: ParseBoolean(get(FieldRemoteFriendly)),
		Featured:       ParseBoolean(get(FieldFeatured)),
	}
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", index+1)
	}
	if _, ok := parseDate(job.PostedAt, v.now()); !ok {
		job.PostedAt = v.now().UTC().Format(time.RFC3339)
	}

	if n, ok := ParseSalary(get(FieldSalaryMin)); ok {
		job.SalaryMin = &n
	}
	if n, ok := ParseSalary(get(FieldSalaryMax)); ok {
		job.SalaryMax = &n
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		return reject("salary", "Minimum salary cannot be greater than maximum salary")
	}

	if err := v.validate.Struct(job); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return reject(fe.Field(), fmt.Sprintf("Invalid job data: %s failed %s", fe.Field(), fe.Tag()))
		}
		return reject("", "Invalid job data: "+err.Error())
	}

	return RowResult{Outcome: RowAccepted, Job: job}
}

// NewJob is the construction path: it returns the Job for an accepted row,
// ErrBlankRow for a blank one and a ValidationError otherwise.
func (v *RowValidator) NewJob(row RawRow, index int) (Job, error) {
	res := v.ValidateRow(row, index)
	switch res.Outcome {
	case RowAccepted:
		return res.Job, nil
	case RowSkipped:
		return Job{}, ErrBlankRow
	default:
		return Job{}, *res.Err
	}
}
