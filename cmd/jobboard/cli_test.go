package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/core"
)

const testFeed = `id,title,company,location,type,level,salary_min,salary_max,tags,posted_at
1,Senior Go Engineer,Acme,Berlin,Full-time,Senior,90000,160000,"Go,PostgreSQL",2024-06-10
2,Frontend Developer,Globex,Austin,Contract,Mid,70000,,"React,TypeScript",2024-06-12
3,Orphan Role,,Paris,Full-time,Mid,,,,2024-06-01
`

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

func writeFeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(testFeed), 0o600))
	return path
}

func prepare(t *testing.T, cmd *cobra.Command) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = time.Now })
	return &out
}

func TestRunParse(t *testing.T) {
	out := prepare(t, parseCmd)
	parseShowJobs = true
	t.Cleanup(func() { parseShowJobs = false })

	require.NoError(t, runParse(parseCmd, []string{writeFeed(t)}))

	got := out.String()
	assert.Contains(t, got, "jobs.csv")
	assert.Contains(t, got, "1 row(s) rejected")
	assert.Contains(t, got, "Row 4: Company is required")
	assert.Contains(t, got, "Senior Go Engineer")
	assert.Contains(t, got, "$90,000 - $160,000")
}

func TestRunParse_Strict(t *testing.T) {
	prepare(t, parseCmd)
	parseStrict = true
	t.Cleanup(func() { parseStrict = false })

	err := runParse(parseCmd, []string{writeFeed(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 rows rejected")
}

func TestRunParse_MissingFile(t *testing.T) {
	prepare(t, parseCmd)

	err := runParse(parseCmd, []string{filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Code: FETCH")
}

func TestRunQuery(t *testing.T) {
	out := prepare(t, queryCmd)
	querySource = writeFeed(t)
	queryXLSX = filepath.Join(t.TempDir(), "out.xlsx")
	t.Cleanup(func() { querySource, queryXLSX = "", "" })

	require.NoError(t, runQuery(queryCmd, []string{"?q=engineer&sort=salary-high"}))

	got := out.String()
	assert.Contains(t, got, "Senior Go Engineer")
	assert.NotContains(t, got, "Frontend Developer")
	assert.Contains(t, got, "Showing 1 of 1 job")
	assert.Contains(t, got, "Wrote 1 jobs to")

	f, err := excelize.OpenFile(queryXLSX)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Jobs")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Senior Go Engineer", rows[1][0])
}

func TestRunQuery_NoMatches(t *testing.T) {
	out := prepare(t, queryCmd)
	querySource = writeFeed(t)
	t.Cleanup(func() { querySource = "" })

	require.NoError(t, runQuery(queryCmd, []string{"q=cobol"}))
	assert.Contains(t, out.String(), "No jobs match your filters.")
}

func TestErrorList(t *testing.T) {
	errs := []string{"Row 2: a", "Row 3: b", "Row 4: c"}

	assert.Equal(t, "", errorList(nil, 5))
	assert.Equal(t, "  - Row 2: a\n  - Row 3: b\n  - Row 4: c\n", errorList(errs, 0))
	assert.Equal(t, "  - Row 2: a\n  ... and 2 more\n", errorList(errs, 1))
}

func TestPageFooter(t *testing.T) {
	jobs := make([]core.Job, 12)
	assert.Equal(t, "Showing 12 of 30 jobs (more with --page 2)",
		pageFooter(catalog.Page{Jobs: jobs, Total: 30, Page: 1, HasMore: true}))
	assert.Equal(t, "Showing 1 of 1 job", pageFooter(catalog.Page{Jobs: jobs[:1], Total: 1, Page: 1}))
}

func TestSalaryCell(t *testing.T) {
	low, high := 50000, 60000
	assert.Contains(t, salaryCell(core.Job{}), "n/a")
	assert.Equal(t, "$50,000 - $60,000", salaryCell(core.Job{SalaryMin: &low, SalaryMax: &high}))
}
