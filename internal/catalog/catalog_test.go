package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/query"
)

type fakeLoader struct {
	mu      sync.Mutex
	results []*core.ParsedCSVResult
	errs    []error
	calls   atomic.Int32
	gate    chan struct{}
}

func (f *fakeLoader) Source() string { return "fake" }

func (f *fakeLoader) Load(ctx context.Context) (*core.ParsedCSVResult, error) {
	n := int(f.calls.Add(1)) - 1
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if n < len(f.errs) && f.errs[n] != nil {
		return nil, f.errs[n]
	}
	if n < len(f.results) {
		return f.results[n], nil
	}
	return f.results[len(f.results)-1], nil
}

func result(titles ...string) *core.ParsedCSVResult {
	jobs := make([]core.Job, len(titles))
	for i, t := range titles {
		jobs[i] = core.Job{
			ID:       t,
			Title:    t,
			Company:  "Acme",
			Type:     core.JobTypeFullTime,
			Level:    core.LevelMid,
			Tags:     []string{"go"},
			PostedAt: "2024-06-01",
		}
	}
	return &core.ParsedCSVResult{Jobs: jobs, Errors: []string{}, TotalRows: len(jobs), ValidRows: len(jobs)}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCatalog_QueryBeforeLoad(t *testing.T) {
	c := New(&fakeLoader{results: []*core.ParsedCSVResult{result("a")}}, quietLogger())

	_, err := c.Query(query.DefaultFilters(), 1, 12)
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, c.Snapshot())
	assert.False(t, c.Status().Loaded)
}

func TestCatalog_ReloadPublishesSnapshot(t *testing.T) {
	loader := &fakeLoader{results: []*core.ParsedCSVResult{result("Backend", "Frontend", "Data")}}
	c := New(loader, quietLogger())

	snap, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Jobs, 3)
	assert.Equal(t, "fake", snap.Source)
	assert.NotEmpty(t, snap.LoadID)
	assert.Len(t, snap.Facets.Tags, 1)
	assert.Same(t, snap, c.Snapshot())

	page, err := c.Query(query.DefaultFilters(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Jobs, 2)
	assert.True(t, page.HasMore)

	st := c.Status()
	assert.True(t, st.Loaded)
	assert.EqualValues(t, 1, st.Loads)
	assert.Empty(t, st.LastError)
}

func TestCatalog_FailedRefreshKeepsSnapshot(t *testing.T) {
	boom := errors.New("upstream down")
	loader := &fakeLoader{
		results: []*core.ParsedCSVResult{result("a", "b"), nil, result("c")},
		errs:    []error{nil, boom, nil},
	}
	c := New(loader, quietLogger())

	first, err := c.Reload(context.Background())
	require.NoError(t, err)

	_, err = c.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Same(t, first, c.Snapshot())
	assert.ErrorIs(t, c.LastError(), boom)

	st := c.Status()
	assert.Equal(t, "upstream down", st.LastError)
	assert.False(t, st.LastErrorAt.IsZero())
	assert.EqualValues(t, 1, st.Failures)

	// Queries keep serving the old snapshot.
	page, err := c.Query(query.DefaultFilters(), 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	third, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Len(t, third.Jobs, 1)
	assert.NoError(t, c.LastError())
}

func TestCatalog_InitialFailureSurfacesOnQuery(t *testing.T) {
	boom := errors.New("no feed")
	c := New(&fakeLoader{errs: []error{boom}, results: []*core.ParsedCSVResult{nil}}, quietLogger())

	_, err := c.Reload(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = c.Query(query.DefaultFilters(), 1, 12)
	assert.ErrorIs(t, err, boom)
}

func TestCatalog_ConcurrentReloadsShareOneLoad(t *testing.T) {
	loader := &fakeLoader{
		results: []*core.ParsedCSVResult{result("a")},
		gate:    make(chan struct{}),
	}
	c := New(loader, quietLogger())

	const callers = 8
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snaps[i], _ = c.Reload(context.Background())
		}()
	}

	// Wait for the first load to start, then give the rest time to join it.
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(loader.gate)
	wg.Wait()

	assert.EqualValues(t, 1, loader.calls.Load())
	for _, s := range snaps {
		assert.Same(t, snaps[0], s)
	}
}

func TestCatalog_ReloadCancelStopsWaitOnly(t *testing.T) {
	loader := &fakeLoader{
		results: []*core.ParsedCSVResult{result("a")},
		gate:    make(chan struct{}),
	}
	c := New(loader, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.Reload(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(loader.gate)
	assert.Eventually(t, func() bool { return c.Snapshot() != nil }, time.Second, time.Millisecond)
}

func TestCatalog_ReloadDeadlineBoundsLoad(t *testing.T) {
	loader := &fakeLoader{
		results: []*core.ParsedCSVResult{result("a")},
		gate:    make(chan struct{}),
	}
	defer close(loader.gate)
	c := New(loader, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Reload(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The load itself gave up and recorded the failure.
	assert.Eventually(t, func() bool {
		return errors.Is(c.LastError(), context.DeadlineExceeded)
	}, time.Second, time.Millisecond)
	assert.Nil(t, c.Snapshot())
	assert.EqualValues(t, 1, c.Status().Failures)
}

func TestCatalog_ReloadDebouncerBoundsLoad(t *testing.T) {
	loader := &fakeLoader{
		results: []*core.ParsedCSVResult{result("a")},
		gate:    make(chan struct{}),
	}
	defer close(loader.gate)
	c := New(loader, quietLogger())

	d := c.ReloadDebouncer(time.Millisecond, 20*time.Millisecond)
	defer d.Stop()
	d.Trigger()

	assert.Eventually(t, func() bool {
		return errors.Is(c.LastError(), context.DeadlineExceeded)
	}, time.Second, time.Millisecond)
}

func TestSnapshot_QueryDefaults(t *testing.T) {
	snap := &Snapshot{Jobs: result("a", "b").Jobs}
	page := snap.Query(query.DefaultFilters(), 0, 0, time.Now())

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, query.DefaultPageSize, page.PageSize)
	assert.Equal(t, 2, page.Total)
	assert.False(t, page.HasMore)
}
