// Package main is the job board command: the HTTP board plus CLI tools for
// checking a feed.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Job board over a CSV feed",
	Long: "jobboard serves a searchable job board built from a CSV feed. The feed is fetched, " +
		"normalized and held in memory; parse and query check a feed from the command line.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists. Variables already set in the environment win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
