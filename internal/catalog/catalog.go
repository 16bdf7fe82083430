// Package catalog holds the in-memory job collection.
//
// The collection is an immutable Snapshot replaced wholesale on every
// successful load. Readers never lock: they take the current Snapshot and
// query it. Concurrent reload requests share one in-flight load.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/query"
)

// ErrNotLoaded is returned by queries made before the first successful load.
var ErrNotLoaded = errors.New("catalog not loaded")

// Loader produces a fresh parse result on every call.
type Loader interface {
	Load(ctx context.Context) (*core.ParsedCSVResult, error)
	Source() string
}

// Snapshot is one successfully loaded job collection. It is never modified
// after it is published.
type Snapshot struct {
	LoadID    string        `json:"load_id"`
	Source    string        `json:"source"`
	Jobs      []core.Job    `json:"-"`
	Errors    []string      `json:"errors"`
	TotalRows int           `json:"total_rows"`
	ValidRows int           `json:"valid_rows"`
	LoadedAt  time.Time     `json:"loaded_at"`
	Duration  time.Duration `json:"duration_ns"`
	Facets    query.Facets  `json:"-"`
}

// Page is one query result: the cumulative window of matching jobs.
type Page struct {
	Jobs     []core.Job         `json:"jobs"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	HasMore  bool               `json:"hasMore"`
	Filters  query.FiltersState `json:"filters"`
}

// Query runs the query pipeline over the snapshot and returns page.
func (s *Snapshot) Query(f query.FiltersState, page, pageSize int, now time.Time) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}

	matched := query.Apply(s.Jobs, f, now)
	return Page{
		Jobs:     query.Paginate(matched, page, pageSize),
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
		HasMore:  query.HasMore(len(matched), page, pageSize),
		Filters:  f,
	}
}

// Status summarizes the catalog for health and status endpoints.
type Status struct {
	Loaded      bool      `json:"loaded"`
	Snapshot    *Snapshot `json:"snapshot,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitzero"`
	Loads       int64     `json:"loads"`
	Failures    int64     `json:"failures"`
}

type loadFailure struct {
	err error
	at  time.Time
}

// Catalog owns the current Snapshot.
type Catalog struct {
	loader Loader
	logger *slog.Logger
	now    func() time.Time

	current  atomic.Pointer[Snapshot]
	failure  atomic.Pointer[loadFailure]
	loads    atomic.Int64
	failures atomic.Int64

	group singleflight.Group
}

// New creates an empty catalog. Call Reload to populate it.
func New(loader Loader, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		loader: loader,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the current collection, or nil before the first
// successful load.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// LastError returns the error of the most recent load if it failed.
// A later successful load clears it.
func (c *Catalog) LastError() error {
	if f := c.failure.Load(); f != nil {
		return f.err
	}
	return nil
}

// Status reports the current snapshot and the most recent failure.
func (c *Catalog) Status() Status {
	st := Status{
		Snapshot: c.current.Load(),
		Loads:    c.loads.Load(),
		Failures: c.failures.Load(),
	}
	st.Loaded = st.Snapshot != nil
	if f := c.failure.Load(); f != nil {
		st.LastError = f.err.Error()
		st.LastErrorAt = f.at
	}
	return st
}

// Query runs f against the current snapshot.
func (c *Catalog) Query(f query.FiltersState, page, pageSize int) (Page, error) {
	snap := c.current.Load()
	if snap == nil {
		if err := c.LastError(); err != nil {
			return Page{}, err
		}
		return Page{}, ErrNotLoaded
	}
	return snap.Query(f, page, pageSize, c.now()), nil
}

// Reload fetches and parses the feed and publishes the result.
//
// Callers that arrive while a load is running wait for that load instead of
// starting another. Canceling ctx only stops this caller waiting; the load
// keeps running for the others. A deadline on ctx does bound the load: the
// caller that starts it passes its deadline on. On failure the previous
// snapshot stays in place.
func (c *Catalog) Reload(ctx context.Context) (*Snapshot, error) {
	ch := c.group.DoChan("reload", func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if deadline, ok := ctx.Deadline(); ok {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithDeadline(loadCtx, deadline)
			defer cancel()
		}
		return c.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (c *Catalog) load(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	loadID := uuid.NewString()
	logger := c.logger.With("load_id", loadID, "source", c.loader.Source())

	c.loads.Add(1)
	result, err := c.loader.Load(ctx)
	if err != nil {
		c.failures.Add(1)
		c.failure.Store(&loadFailure{err: err, at: c.now()})
		if c.current.Load() != nil {
			logger.Warn("catalog refresh failed, keeping previous snapshot", "error", err)
		} else {
			logger.Error("catalog load failed", "error", err)
		}
		return nil, err
	}

	snap := &Snapshot{
		LoadID:    loadID,
		Source:    c.loader.Source(),
		Jobs:      result.Jobs,
		Errors:    result.Errors,
		TotalRows: result.TotalRows,
		ValidRows: result.ValidRows,
		LoadedAt:  c.now(),
		Facets:    query.BuildFacets(result.Jobs),
	}
	snap.Duration = snap.LoadedAt.Sub(start)

	c.current.Store(snap)
	c.failure.Store(nil)

	logger.Info("catalog loaded",
		"jobs", len(snap.Jobs),
		"row_errors", len(snap.Errors),
		"duration_ms", snap.Duration.Milliseconds(),
	)
	return snap, nil
}
