package main

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/jobboard/internal/loader"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file-or-url]",
	Short: "Parse a CSV feed and report what was accepted",
	Long: "Fetch and parse a feed the way the board does and print a summary plus the row errors. " +
		"Without an argument the configured feed (JOBS_CSV_URL, or the bundled sample) is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var (
	parseFlags     feedFlags
	parseMaxErrors int
	parseShowJobs  bool
	parseStrict    bool
)

func init() {
	parseCmd.Flags().DurationVar(&parseFlags.timeout, "timeout", loader.DefaultFetchTimeout, "HTTP fetch timeout")
	parseCmd.Flags().Int64Var(&parseFlags.maxBytes, "max-bytes", 10<<20, "Largest feed accepted, 0 for no limit")
	parseCmd.Flags().IntVar(&parseMaxErrors, "errors", 20, "Row errors to print, 0 for all")
	parseCmd.Flags().BoolVar(&parseShowJobs, "jobs", false, "Print the accepted jobs")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "Exit with an error when any row is rejected")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}

	logger := slog.New(slog.DiscardHandler)
	l, err := newFeedLoader(arg, parseFlags, logger)
	if err != nil {
		return err
	}

	result, err := loadFeed(cmd.Context(), l)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table, err := summaryTable(l.Source(), result)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, table)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out, pterm.Yellow(fmt.Sprintf("%d row(s) rejected:", len(result.Errors))))
		fmt.Fprint(out, errorList(result.Errors, parseMaxErrors))
	}

	if parseShowJobs && len(result.Jobs) > 0 {
		jobs, err := jobsTable(result.Jobs, timeNow())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, jobs)
	}

	if parseStrict && len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d rows rejected", len(result.Errors), result.TotalRows)
	}
	return nil
}
