package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// MaxLoggedRowErrors caps how many row errors are echoed to the log per parse.
const MaxLoggedRowErrors = 5

// Parser turns CSV text into a ParsedCSVResult.
type Parser struct {
	validator *RowValidator
	logger    *slog.Logger
}

// NewParser creates a parser. A nil logger discards output; a nil now
// uses time.Now for posting-date fallbacks.
func NewParser(logger *slog.Logger, now func() time.Time) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		validator: NewRowValidator(now),
		logger:    logger,
	}
}

// ParseCSV parses text with a default parser.
func ParseCSV(text string) (*ParsedCSVResult, error) {
	return NewParser(nil, nil).Parse(strings.NewReader(text))
}

// Parse reads the header row and every data row from r.
//
// Bad rows are recorded in the result's Errors as "Row N: message" and never
// stop the batch. A *ParseError is returned only when the input cannot be
// tokenized at all.
func (p *Parser) Parse(r io.Reader) (*ParsedCSVResult, error) {
	cr := csv.NewReader(SanitizeReader(r))
	cr.FieldsPerRecord = 0
	// Feeds are hand-edited; a stray quote (27" Monitor) stays in the cell.
	cr.LazyQuotes = true

	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Message: "no header row"}
	}
	if err != nil {
		return nil, &ParseError{Message: "read header", Err: err}
	}

	if missing := ValidateHeaders(headers); len(missing) > 0 {
		p.logger.Warn("csv header missing required fields",
			slog.Any("missing", missing),
			slog.Any("headers", headers))
	}

	idx := MakeHeaderIndex(headers)
	result := &ParsedCSVResult{
		Jobs:   []Job{},
		Errors: []string{},
	}
	seen := make(map[string]bool)

	for index := 0; ; index++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, &ParseError{Message: fmt.Sprintf("read row %d", index+2), Err: err}
			}
			if !errors.Is(pe.Err, csv.ErrFieldCount) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", pe.StartLine, pe.Err))
				result.TotalRows++
				continue
			}
			// Field count mismatches still carry the record. Short rows are
			// padded by HeaderIndex.Value; whitespace-only lines are skipped below.
			if !isBlankRecord(record) {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", pe.StartLine, pe.Err))
			}
		}

		result.TotalRows++
		res := p.validator.ValidateRow(rowFields(idx, record), index)
		switch res.Outcome {
		case RowAccepted:
			res.Job.ID = uniqueID(res.Job.ID, seen)
			result.Jobs = append(result.Jobs, res.Job)
			result.ValidRows++
		case RowRejected:
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", res.Err.Row, res.Err.Message))
		}
	}

	if len(result.Errors) > 0 {
		p.logger.Warn("csv rows rejected",
			slog.Int("errors", len(result.Errors)),
			slog.Any("first", result.Errors[:min(len(result.Errors), MaxLoggedRowErrors)]),
			slog.Int("total_rows", result.TotalRows),
			slog.Int("valid_rows", result.ValidRows))
	}

	return result, nil
}

// uniqueID returns id, or id-2, id-3, ... when an earlier row already
// holds it, and marks the result as taken.
func uniqueID(id string, seen map[string]bool) string {
	candidate := id
	for n := 2; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	seen[candidate] = true
	return candidate
}

// rowFields gathers the canonical field values of one record.
func rowFields(idx HeaderIndex, record []string) RawRow {
	row := make(RawRow, len(idx))
	for field := range idx {
		row[field] = idx.Value(record, field)
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
