package core

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestParser() *Parser {
	return NewParser(nil, func() time.Time { return fixedNow })
}

func TestParse_SynonymHeadersAndDefaults(t *testing.T) {
	text := "Job Title,Organization,Min Salary\nEngineer,Acme,80000\n"

	result, err := newTestParser().Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if result.TotalRows != 1 || result.ValidRows != 1 {
		t.Fatalf("rows = %d/%d, want 1/1", result.ValidRows, result.TotalRows)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	job := result.Jobs[0]
	if job.Title != "Engineer" || job.Company != "Acme" {
		t.Errorf("title/company = %q/%q", job.Title, job.Company)
	}
	if job.SalaryMin == nil || *job.SalaryMin != 80000 {
		t.Errorf("SalaryMin = %v, want 80000", job.SalaryMin)
	}
	if job.Type != JobTypeFullTime || job.Level != LevelMid {
		t.Errorf("type/level = %q/%q, want defaults", job.Type, job.Level)
	}
	if job.ID != "job-1" {
		t.Errorf("ID = %q, want job-1", job.ID)
	}
}

func TestParse_BadRowsDoNotAbortBatch(t *testing.T) {
	text := strings.Join([]string{
		"title,company,salary_min,salary_max",
		"Engineer,Acme,50k,90k",
		",Globex,,",
		"Designer,,,",
		",,,",
		"Analyst,Initech,100k,80k",
		"Manager,Umbrella,,",
	}, "\n")

	result, err := newTestParser().Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if result.TotalRows != 6 {
		t.Errorf("TotalRows = %d, want 6 (blank row counted)", result.TotalRows)
	}
	if result.ValidRows != 2 {
		t.Errorf("ValidRows = %d, want 2", result.ValidRows)
	}

	wantErrors := []string{
		"Row 3: Title is required",
		"Row 4: Company is required",
		"Row 6: Minimum salary cannot be greater than maximum salary",
	}
	if !reflect.DeepEqual(result.Errors, wantErrors) {
		t.Errorf("Errors = %q, want %q", result.Errors, wantErrors)
	}

	if got := []string{result.Jobs[0].Title, result.Jobs[1].Title}; !reflect.DeepEqual(got, []string{"Engineer", "Manager"}) {
		t.Errorf("accepted titles = %v", got)
	}
	if result.Jobs[1].ID != "job-6" {
		t.Errorf("second job ID = %q, want job-6", result.Jobs[1].ID)
	}
}

func TestParse_TokenizerErrorsAreRowErrors(t *testing.T) {
	text := strings.Join([]string{
		"title,company,location",
		"Engineer,Acme,Berlin",
		"Short,Globex",
		"Analyst,Initech,Austin",
	}, "\n")

	result, err := newTestParser().Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %q, want 1 entry", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Row 3: ") || !strings.Contains(result.Errors[0], "wrong number of fields") {
		t.Errorf("error = %q, want field count error on row 3", result.Errors[0])
	}

	// The short row is still processed with the missing cell treated as empty.
	if result.ValidRows != 3 {
		t.Errorf("ValidRows = %d, want 3", result.ValidRows)
	}
	if result.TotalRows != 3 {
		t.Errorf("TotalRows = %d, want 3", result.TotalRows)
	}
}

func TestParse_StrayQuotesKeepRow(t *testing.T) {
	text := "title,company,location\n" +
		"27\" Monitor Tester,Acme,Berlin\n" +
		"Bad \"quote,Globex,Paris\n"

	result, err := newTestParser().Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %q, want none", result.Errors)
	}
	if result.ValidRows != 2 {
		t.Fatalf("ValidRows = %d, want 2", result.ValidRows)
	}
	if got := result.Jobs[0].Title; got != `27" Monitor Tester` {
		t.Errorf("Title = %q, want stray quote kept", got)
	}
	if got := result.Jobs[1].Location; got != "Paris" {
		t.Errorf("Location = %q, want Paris", got)
	}
}

func TestParse_UniqueIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "generated id then explicit",
			text: "id,title,company\n,A,X\njob-1,B,Y\n",
			want: []string{"job-1", "job-1-2"},
		},
		{
			name: "explicit duplicates",
			text: "id,title,company\nx,A,X\nx,B,Y\nx,C,Z\n",
			want: []string{"x", "x-2", "x-3"},
		},
		{
			name: "suffix already taken",
			text: "id,title,company\na-2,A,X\na,B,Y\na,C,Z\n",
			want: []string{"a-2", "a", "a-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestParser().Parse(strings.NewReader(tt.text))
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			var got []string
			for _, j := range result.Jobs {
				got = append(got, j.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDs = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_OversizedSalaryIsAbsent(t *testing.T) {
	result, err := newTestParser().Parse(strings.NewReader("title,company,salary_min\nEng,Acme,1e30\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if result.ValidRows != 1 || len(result.Errors) != 0 {
		t.Fatalf("rows = %d valid, errors %q; want accepted row", result.ValidRows, result.Errors)
	}
	if result.Jobs[0].SalaryMin != nil {
		t.Errorf("SalaryMin = %d, want absent", *result.Jobs[0].SalaryMin)
	}
}

func TestParse_BOMAndBlankLines(t *testing.T) {
	text := "\xef\xbb\xbftitle,company\n\nEngineer,Acme\n\n\nDesigner,Globex\n"

	result, err := newTestParser().Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if result.ValidRows != 2 || result.TotalRows != 2 {
		t.Errorf("rows = %d/%d, want 2/2", result.ValidRows, result.TotalRows)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestParse_EmptyInputIsParseError(t *testing.T) {
	_, err := newTestParser().Parse(strings.NewReader(""))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestParse_ReaderFailureIsParseError(t *testing.T) {
	_, err := newTestParser().Parse(io.MultiReader(strings.NewReader("title,company\nA,B\n"), failingReader{}))

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error %v does not wrap the reader failure", err)
	}
}

func TestParseCSV(t *testing.T) {
	result, err := ParseCSV("title,company,tags\nEngineer,Acme,\"go, sql\"\n")
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if !reflect.DeepEqual(result.Jobs[0].Tags, []string{"go", "sql"}) {
		t.Errorf("Tags = %v", result.Jobs[0].Tags)
	}
}
