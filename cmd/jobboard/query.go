package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/core"
	"github.com/JonMunkholm/jobboard/internal/export"
	"github.com/JonMunkholm/jobboard/internal/loader"
	"github.com/JonMunkholm/jobboard/internal/query"
)

var queryCmd = &cobra.Command{
	Use:   "query [filters]",
	Short: "Run a board query against a feed",
	Long: "Load a feed and run one query. Filters use the board's URL query syntax, " +
		`e.g. "q=react&remote=true&sort=salary-high".`,
	Example: `  jobboard query "q=go&level=Senior"
  jobboard query --source jobs.csv --xlsx out.xlsx "tags=react,typescript"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

var (
	queryFlags    feedFlags
	querySource   string
	queryPage     int
	queryPageSize int
	queryXLSX     string
)

// timeNow is replaced in tests.
var timeNow = time.Now

func init() {
	queryCmd.Flags().StringVar(&querySource, "source", "", "Feed file or URL (default: configured feed)")
	queryCmd.Flags().DurationVar(&queryFlags.timeout, "timeout", loader.DefaultFetchTimeout, "HTTP fetch timeout")
	queryCmd.Flags().Int64Var(&queryFlags.maxBytes, "max-bytes", 10<<20, "Largest feed accepted, 0 for no limit")
	queryCmd.Flags().IntVar(&queryPage, "page", 1, "Page to show; pages are cumulative")
	queryCmd.Flags().IntVar(&queryPageSize, "page-size", query.DefaultPageSize, "Jobs per page")
	queryCmd.Flags().StringVar(&queryXLSX, "xlsx", "", "Also write the full result to this XLSX file")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	var raw string
	if len(args) > 0 {
		raw = strings.TrimPrefix(args[0], "?")
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return fmt.Errorf("invalid filters %q: %w", raw, err)
	}
	filters := query.FromValues(values)

	logger := slog.New(slog.DiscardHandler)
	l, err := newFeedLoader(querySource, queryFlags, logger)
	if err != nil {
		return err
	}

	c := catalog.New(l, logger)
	if _, err := c.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("load feed: %w", err)
	}

	snap := c.Snapshot()
	now := timeNow()
	page := snap.Query(filters, queryPage, queryPageSize, now)

	out := cmd.OutOrStdout()
	if enc := filters.Encode(); enc != "" {
		fmt.Fprintf(out, "Filters: %s\n", enc)
	}
	if len(page.Jobs) == 0 {
		fmt.Fprintln(out, "No jobs match your filters.")
	} else {
		table, err := jobsTable(page.Jobs, now)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, table)
	}
	fmt.Fprintln(out, pageFooter(page))

	if queryXLSX != "" {
		if err := writeXLSXFile(queryXLSX, query.Apply(snap.Jobs, filters, now), logger); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d jobs to %s\n", page.Total, queryXLSX)
	}
	return nil
}

func writeXLSXFile(path string, jobs []core.Job, logger *slog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.NewWriter(logger).WriteXLSX(f, jobs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
