// Package main provides the fit_agent CLI: skill extraction, fit scoring, full analyses,
// the HTTP API server and the queue worker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fit_agent",
	Short: "Job application intelligence engine",
	Long: `fit_agent compares a CV against a job description: it extracts skills from both,
computes a weighted 0-100 fit score with matched and missing skills and risk flags, and can
generate improvement suggestions, talking points, a cover letter or a score explanation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
