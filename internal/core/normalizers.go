package core

// normalizers.go maps the messy values found in real job feeds onto canonical values:
//   - Employment type and experience level synonyms ("ft", "sr", "staff", ...)
//   - Salaries with currency symbols, separators, k/m suffixes and hourly rates
//   - Tag lists separated by commas, pipes or semicolons
//   - Loose booleans (yes/no, 1/0, on)
//   - URLs missing their scheme
//
// None of these functions return errors. Unrecognised input resolves to a
// default or to "absent" so that one odd cell never costs a whole row.

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// HourlySalaryThreshold is the value below which a salary is read as an hourly rate.
// Pending product review: low annual stipends are misread as hourly under this rule.
const HourlySalaryThreshold = 200

// HoursPerYear annualizes hourly rates (40 hours x 52 weeks).
const HoursPerYear = 40 * 52

// MaxSalary is the largest salary kept; anything above is treated as garbage.
const MaxSalary = math.MaxInt32

// leadingNumberRegex matches the numeric prefix of a cleaned salary string.
var leadingNumberRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// schemeRegex detects an explicit http(s) scheme.
var schemeRegex = regexp.MustCompile(`(?i)^https?://`)

var jobTypeSynonyms = map[string]JobType{
	"full-time":  JobTypeFullTime,
	"fulltime":   JobTypeFullTime,
	"full time":  JobTypeFullTime,
	"ft":         JobTypeFullTime,
	"part-time":  JobTypePartTime,
	"parttime":   JobTypePartTime,
	"part time":  JobTypePartTime,
	"pt":         JobTypePartTime,
	"contract":   JobTypeContract,
	"contractor": JobTypeContract,
	"temporary":  JobTypeContract,
	"temp":       JobTypeContract,
	"freelance":  JobTypeFreelance,
	"freelancer": JobTypeFreelance,
	"intern":     JobTypeInternship,
	"internship": JobTypeInternship,
}

var levelSynonyms = map[string]Level{
	"entry":          LevelEntry,
	"entry-level":    LevelEntry,
	"entry level":    LevelEntry,
	"graduate":       LevelEntry,
	"junior":         LevelJunior,
	"jr":             LevelJunior,
	"mid":            LevelMid,
	"mid-level":      LevelMid,
	"mid level":      LevelMid,
	"middle":         LevelMid,
	"intermediate":   LevelMid,
	"senior":         LevelSenior,
	"sr":             LevelSenior,
	"senior-level":   LevelSenior,
	"senior level":   LevelSenior,
	"lead":           LevelLead,
	"team lead":      LevelLead,
	"tech lead":      LevelLead,
	"technical lead": LevelLead,
	"principal":      LevelPrincipal,
	"staff":          LevelPrincipal,
	"architect":      LevelPrincipal,
	"director":       LevelDirector,
	"head":           LevelDirector,
	"vp":             LevelDirector,
	"vice president": LevelDirector,
}

// NormalizeJobType maps a raw employment type to its canonical value.
// Unknown or empty input silently defaults to Full-time.
func NormalizeJobType(s string) JobType {
	if t, ok := jobTypeSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return JobTypeFullTime
}

// NormalizeLevel maps a raw experience level to its canonical value.
// Unknown or empty input silently defaults to Mid.
func NormalizeLevel(s string) Level {
	if l, ok := levelSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return LevelMid
}

// ParseSalary converts a raw salary cell to an annual whole-number amount.
//
// Currency symbols, thousands separators and whitespace are removed, a trailing
// k or m multiplies by 1,000 or 1,000,000, and values under HourlySalaryThreshold
// are annualized as hourly rates. Returns false for empty, non-numeric,
// negative or implausibly large (above MaxSalary) input.
func ParseSalary(s string) (int, bool) {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == ',', r == '$', r == '€', r == '£':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = 1_000
		s = s[:len(s)-1]
	case 'm', 'M':
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}

	num := leadingNumberRegex.FindString(s)
	if num == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	value *= multiplier

	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if value < HourlySalaryThreshold {
		value *= HoursPerYear
	}
	if value > MaxSalary {
		return 0, false
	}
	return int(math.Round(value)), true
}

// ParseTags splits a tag list on commas, pipes or semicolons, drops empty
// entries and keeps at most MaxTags in source order.
func ParseTags(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '|' || r == ';'
	})
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// ParseBoolean reports whether s is one of true, 1, yes, y or on (case-insensitive).
// Anything else, including empty input, is false.
func ParseBoolean(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// ParseURL trims s, prepends https:// when no http(s) scheme is present and
// returns the result if it is a well-formed absolute URL. Malformed input
// yields "".
func ParseURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !schemeRegex.MatchString(s) {
		s = "https://" + s
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return ""
	}
	return s
}

// CleanCell removes spreadsheet artifacts from a header cell:
// surrounding whitespace, Excel formula wrappers (="...") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
