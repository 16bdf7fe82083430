package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/loader"
)

const testFeed = `id,title,company,location,type,level,salary_min,salary_max,tags,posted_at,remote_friendly,apply_url
1,Senior Go Engineer,Acme,Berlin,Full-time,Senior,90000,120000,"Go,PostgreSQL",2024-06-10,true,https://acme.example/apply
2,Frontend Developer,Globex,Austin,Contract,Mid,70000,,"React,TypeScript",2024-06-12,false,
3,Data Analyst,Initech,Remote,Part-time,Junior,,60000,SQL,2024-05-01,true,
4,Orphan Role,,Paris,Full-time,Mid,,,,2024-06-01,false,
`

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type failingSource struct{ err error }

func (s failingSource) Name() string { return "broken" }

func (s failingSource) Fetch(context.Context) ([]byte, error) { return nil, s.err }

func newTestServer(t *testing.T, src loader.Source, load bool, opts Options) *Server {
	t.Helper()

	l := loader.NewWithSource(src, quietLogger(), func() time.Time { return testNow })
	c := catalog.New(l, quietLogger())
	if load {
		_, _ = c.Reload(context.Background())
	}

	opts.Logger = quietLogger()
	srv := NewServer(c, opts)
	srv.now = func() time.Time { return testNow }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func feedSource() loader.Source {
	return &loader.FSSource{
		FS:   fstest.MapFS{"jobs.csv": {Data: []byte(testFeed)}},
		Path: "jobs.csv",
	}
}

func do(t *testing.T, srv *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestBoard_FullPage(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{})

	rec := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("HX-Replace-Url"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	doc := document(t, rec)
	assert.Equal(t, "3 jobs found", doc.Find(".result-count").Text())
	assert.Equal(t, 0, doc.Find(".reset-filters").Length())
	assert.Equal(t, 0, doc.Find(".load-more").Length())

	cards := doc.Find(".job-card")
	require.Equal(t, 3, cards.Length())
	// Newest first by default.
	id, _ := cards.First().Attr("data-job-id")
	assert.Equal(t, "2", id)

	first := doc.Find(`.job-card[data-job-id="1"]`)
	assert.Equal(t, "$90,000 - $120,000 / year", strings.TrimSpace(first.Find(".job-salary").Text()))
	assert.Equal(t, "Posted 5d ago", first.Find(".job-posted").Text())
	href, _ := first.Find(".job-title a").Attr("href")
	assert.Equal(t, "https://acme.example/apply", href)

	assert.Equal(t, "Up to $60,000 / year",
		strings.TrimSpace(doc.Find(`.job-card[data-job-id="3"] .job-salary`).Text()))

	// Facets feed the filter form.
	assert.Equal(t, 4, doc.Find(`select[name="location"] option`).Length())
	assert.Equal(t, 5, doc.Find(".tag-cloud a").Length())
}

func TestBoard_Filters(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{})

	rec := do(t, srv, http.MethodGet, "/?sort=alphabetical&q=go&salaryMax=200000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/?q=go&sort=alphabetical", rec.Header().Get("HX-Replace-Url"))

	doc := document(t, rec)
	assert.Equal(t, "1 job found", doc.Find(".result-count").Text())
	assert.Equal(t, 1, doc.Find(".reset-filters").Length())
	val, _ := doc.Find(`input[name="q"]`).Attr("value")
	assert.Equal(t, "go", val)
	_, selected := doc.Find(`select[name="sort"] option[value="alphabetical"]`).Attr("selected")
	assert.True(t, selected)
}

func TestBoard_HTMXRendersResultsOnly(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{PageSize: 2})

	rec := do(t, srv, http.MethodGet, "/?remote=true", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<!doctype html>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Find(".job-card").Length())
	assert.Equal(t, 0, doc.Find(".load-more").Length())
}

func TestBoard_LoadMore(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{PageSize: 2})

	doc := document(t, do(t, srv, http.MethodGet, "/?tags=Go,React,SQL", nil))
	assert.Equal(t, 2, doc.Find(".job-card").Length())
	href, ok := doc.Find(".load-more").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/?page=2&tags=Go%2CReact%2CSQL", href)

	rec := do(t, srv, http.MethodGet, href, nil)
	assert.Equal(t, "/?page=2&tags=Go%2CReact%2CSQL", rec.Header().Get("HX-Replace-Url"))
	doc = document(t, rec)
	assert.Equal(t, 3, doc.Find(".job-card").Length())
	assert.Equal(t, 0, doc.Find(".load-more").Length())
}

func TestAPIJobs(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{PageSize: 2})

	rec := do(t, srv, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var page struct {
		Jobs     []core.Job `json:"jobs"`
		Total    int        `json:"total"`
		Page     int        `json:"page"`
		PageSize int        `json:"pageSize"`
		HasMore  bool       `json:"hasMore"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
	assert.True(t, page.HasMore)
	require.Len(t, page.Jobs, 2)
	assert.Equal(t, "2", page.Jobs[0].ID)
	assert.Equal(t, "1", page.Jobs[1].ID)
}

func TestAPIFacets(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{})

	rec := do(t, srv, http.MethodGet, "/api/facets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var facets struct {
		Types []struct {
			Value string `json:"value"`
			Count int    `json:"count"`
		} `json:"types"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&facets))
	assert.Len(t, facets.Types, 3)
}

func TestAPIExport(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{})

	rec := do(t, srv, http.MethodGet, "/api/export.xlsx?remote=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="jobs-2024-06-15.xlsx"`)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Jobs")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Senior Go Engineer", rows[1][0])
}

func TestAPIStatus(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{})

	rec := do(t, srv, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st struct {
		Loaded   bool `json:"loaded"`
		Snapshot struct {
			Source    string   `json:"source"`
			Errors    []string `json:"errors"`
			TotalRows int      `json:"total_rows"`
			ValidRows int      `json:"valid_rows"`
		} `json:"snapshot"`
		ReloadPending bool `json:"reload_pending"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.True(t, st.Loaded)
	assert.Equal(t, "jobs.csv", st.Snapshot.Source)
	assert.Equal(t, 4, st.Snapshot.TotalRows)
	assert.Equal(t, 3, st.Snapshot.ValidRows)
	assert.Equal(t, []string{"Row 5: Company is required"}, st.Snapshot.Errors)
	assert.False(t, st.ReloadPending)
}

func TestAPIReload_Debounced(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{ReloadDebounce: 20 * time.Millisecond})

	for range 3 {
		rec := do(t, srv, http.MethodPost, "/api/reload", nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
	assert.True(t, srv.reloads.Pending())

	assert.Eventually(t, func() bool {
		return srv.catalog.Status().Loads == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 2, srv.catalog.Status().Loads)
}

func TestAPIReload_RateLimited(t *testing.T) {
	srv := newTestServer(t, feedSource(), true, Options{ReloadRate: 1})

	assert.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, "/api/reload", nil).Code)

	rec := do(t, srv, http.MethodPost, "/api/reload", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestNotLoaded(t *testing.T) {
	srv := newTestServer(t, feedSource(), false, Options{})

	rec := do(t, srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jobs are still loading")

	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodGet, "/healthz", nil).Code)
}

func TestLoadFailure(t *testing.T) {
	src := failingSource{err: &core.FetchError{StatusCode: 404, Message: "Failed to fetch CSV: Not Found"}}
	srv := newTestServer(t, src, true, Options{})

	rec := do(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	doc := document(t, rec)
	assert.Equal(t, "Failed to load jobs", doc.Find(".load-failure h1").Text())
	action, _ := doc.Find(".load-failure form").Attr("action")
	assert.Equal(t, "/reload", action)
	assert.Contains(t, doc.Find(".alert-code").Text(), "FETCH001")

	rec = do(t, srv, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "FETCH001", body.Code)
	assert.NotEmpty(t, body.Action)

	// Retry fails the same way and renders the failure state again.
	rec = do(t, srv, http.MethodPost, "/reload", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReloadNow_Redirects(t *testing.T) {
	srv := newTestServer(t, feedSource(), false, Options{})

	rec := do(t, srv, http.MethodPost, "/reload", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)
}
