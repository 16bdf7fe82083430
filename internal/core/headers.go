package core

import (
	"strings"
)

// Canonical field names a CSV header can resolve to.
const (
	FieldID             = "id"
	FieldTitle          = "title"
	FieldCompany        = "company"
	FieldLocation       = "location"
	FieldType           = "type"
	FieldLevel          = "level"
	FieldSalaryMin      = "salary_min"
	FieldSalaryMax      = "salary_max"
	FieldTags           = "tags"
	FieldPostedAt       = "posted_at"
	FieldApplyURL       = "apply_url"
	FieldDescription    = "description"
	FieldBenefits       = "benefits"
	FieldRequirements   = "requirements"
	FieldCompanyLogo    = "company_logo"
	FieldCompanyWebsite = "company_website"
	FieldRemoteFriendly = "remote_friendly"
	FieldFeatured       = "featured"
)

// RequiredFields are the canonical fields every row must carry.
var RequiredFields = []string{FieldTitle, FieldCompany}

var canonicalFields = map[string]bool{
	FieldID: true, FieldTitle: true, FieldCompany: true, FieldLocation: true,
	FieldType: true, FieldLevel: true, FieldSalaryMin: true, FieldSalaryMax: true,
	FieldTags: true, FieldPostedAt: true, FieldApplyURL: true, FieldDescription: true,
	FieldBenefits: true, FieldRequirements: true, FieldCompanyLogo: true,
	FieldCompanyWebsite: true, FieldRemoteFriendly: true, FieldFeatured: true,
}

// headerSynonyms maps header spellings seen in the wild to canonical fields.
// Keys are lower-case with spaces and hyphens folded to underscores.
var headerSynonyms = map[string]string{
	"job_title":        FieldTitle,
	"position":         FieldTitle,
	"role":             FieldTitle,
	"company_name":     FieldCompany,
	"organization":     FieldCompany,
	"organisation":     FieldCompany,
	"org":              FieldCompany,
	"employer":         FieldCompany,
	"job_type":         FieldType,
	"employment_type":  FieldType,
	"employment":       FieldType,
	"experience_level": FieldLevel,
	"seniority_level":  FieldLevel,
	"seniority":        FieldLevel,
	"experience":       FieldLevel,
	"min_salary":       FieldSalaryMin,
	"minimum_salary":   FieldSalaryMin,
	"salary_minimum":   FieldSalaryMin,
	"salary_from":      FieldSalaryMin,
	"max_salary":       FieldSalaryMax,
	"maximum_salary":   FieldSalaryMax,
	"salary_maximum":   FieldSalaryMax,
	"salary_to":        FieldSalaryMax,
	"skills":           FieldTags,
	"technologies":     FieldTags,
	"tech_stack":       FieldTags,
	"posted":           FieldPostedAt,
	"post_date":        FieldPostedAt,
	"date_posted":      FieldPostedAt,
	"posted_date":      FieldPostedAt,
	"publish_date":     FieldPostedAt,
	"application_url":  FieldApplyURL,
	"apply_link":       FieldApplyURL,
	"application_link": FieldApplyURL,
	"url":              FieldApplyURL,
	"job_description":  FieldDescription,
	"job_summary":      FieldDescription,
	"summary":          FieldDescription,
	"logo":             FieldCompanyLogo,
	"logo_url":         FieldCompanyLogo,
	"website":          FieldCompanyWebsite,
	"company_url":      FieldCompanyWebsite,
	"remote":           FieldRemoteFriendly,
	"is_remote":        FieldRemoteFriendly,
	"remote_work":      FieldRemoteFriendly,
	"work_from_home":   FieldRemoteFriendly,
	"is_featured":      FieldFeatured,
}

// NormalizeHeader maps a raw header to its canonical field name.
// Unmapped headers pass through lower-cased and trimmed.
func NormalizeHeader(h string) string {
	normalized := strings.ToLower(CleanCell(h))

	key := strings.Join(strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	}), "_")

	if field, ok := headerSynonyms[key]; ok {
		return field
	}
	if canonicalFields[key] {
		return key
	}
	return normalized
}

// MakeHeaderIndex builds a lookup from canonical field name to column position.
// When two columns resolve to the same field, both positions are kept in
// order so the first non-empty value can win.
func MakeHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		field := NormalizeHeader(h)
		if field == "" {
			continue
		}
		idx[field] = append(idx[field], i)
	}
	return idx
}

// ValidateHeaders returns the required canonical fields that no header
// resolves to, in RequiredFields order. An empty result means the header
// row can produce valid jobs.
func ValidateHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeHeader(h)] = true
	}

	var missing []string
	for _, field := range RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}
