// Package loader fetches the job feed and hands it to the CSV parser.
//
// It is the only I/O boundary of the ingestion pipeline. Every Load
// re-fetches; nothing is cached between loads and nothing is retried.
package loader

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/jobboard/internal/core"
)

// NoSourceMessage is reported when no URL is configured and the bundled
// sample cannot be read either.
const NoSourceMessage = "No CSV URL configured and sample data not available. Please set JOBS_CSV_URL environment variable."

// Options configures a Loader.
type Options struct {
	URL          string        // Remote feed; empty selects the bundled sample
	FetchTimeout time.Duration // Per-request timeout for remote feeds
	MaxBytes     int64         // Body size limit, 0 disables
	Logger       *slog.Logger
	Now          func() time.Time
}

// Loader fetches and parses the configured feed.
type Loader struct {
	source   Source
	fallback bool
	parser   *core.Parser
	logger   *slog.Logger
}

// New creates a loader for opts. Without a URL it serves the bundled sample.
func New(opts Options) *Loader {
	var src Source
	if opts.URL != "" {
		timeout := opts.FetchTimeout
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		src = NewHTTPSource(opts.URL, &http.Client{Timeout: timeout}, opts.MaxBytes)
	} else {
		src = SampleSource()
	}

	l := NewWithSource(src, opts.Logger, opts.Now)
	l.fallback = opts.URL == ""
	return l
}

// NewWithSource creates a loader over an arbitrary source.
func NewWithSource(src Source, logger *slog.Logger, now func() time.Time) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		source: src,
		parser: core.NewParser(logger, now),
		logger: logger,
	}
}

// Source returns the name of the feed this loader reads.
func (l *Loader) Source() string {
	return l.source.Name()
}

// Load fetches the feed and parses it.
//
// Fetch failures are *core.FetchError; a feed that cannot be tokenized at
// all is *core.ParseError. Row-level problems are reported in the result,
// not as an error.
func (l *Loader) Load(ctx context.Context) (*core.ParsedCSVResult, error) {
	start := time.Now()

	body, err := l.source.Fetch(ctx)
	if err != nil && l.fallback {
		l.logger.Error("bundled sample unavailable", "error", err)
		return nil, &core.FetchError{Message: NoSourceMessage, Err: err}
	}
	if err != nil {
		l.logger.Error("fetch feed failed",
			"source", l.source.Name(),
			"error", err,
		)
		return nil, err
	}

	result, err := l.parser.Parse(bytes.NewReader(body))
	if err != nil {
		l.logger.Error("parse feed failed",
			"source", l.source.Name(),
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("feed loaded",
		"source", l.source.Name(),
		"bytes", len(body),
		"total_rows", result.TotalRows,
		"valid_rows", result.ValidRows,
		"row_errors", len(result.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}
