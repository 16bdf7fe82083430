package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/jobboard/internal/config"
	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/loader"
)

// feedFlags are the source flags shared by parse and query.
type feedFlags struct {
	timeout  time.Duration
	maxBytes int64
}

// newFeedLoader picks the source for arg: an http(s) URL, a local file, or
// with no argument the configured feed.
func newFeedLoader(arg string, flags feedFlags, logger *slog.Logger) (*loader.Loader, error) {
	switch {
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		client := &http.Client{Timeout: flags.timeout}
		return loader.NewWithSource(loader.NewHTTPSource(arg, client, flags.maxBytes), logger, nil), nil
	case arg != "":
		return loader.NewWithSource(loader.FileSource{Path: arg}, logger, nil), nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return loader.New(loader.Options{
		URL:          cfg.Feed.URL,
		FetchTimeout: cfg.Feed.FetchTimeout,
		MaxBytes:     cfg.Feed.MaxBytes,
		Logger:       logger,
	}), nil
}

// loadFeed runs one load and turns failures into the user-facing message.
func loadFeed(ctx context.Context, l *loader.Loader) (*core.ParsedCSVResult, error) {
	result, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s\n  cause: %w", core.FormatUserError(err), err)
	}
	return result, nil
}
