package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddd23/job-application-intelligence-engine/internal/config"
	"github.com/daviddd23/job-application-intelligence-engine/internal/observability"
	"github.com/daviddd23/job-application-intelligence-engine/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract normalized skill tokens from a job description or CV",
	Long: `Extract the skill tokens of a single document. With a scoring profile, only vocabulary
terms (and their synonyms) are found; otherwise every non-stopword token is kept.

With --kind job the skills are also partitioned into the profile's scoring categories.`,
	RunE: runExtract,
}

var (
	extractInput   string
	extractText    string
	extractKind    string
	extractProfile string
	extractOutput  string
	extractBrowser bool
	extractVerbose bool
)

// ExtractOutput is the JSON written by the extract command.
type ExtractOutput struct {
	Source     string           `json:"source"`
	Skills     types.SkillSet   `json:"skills"`
	Categories *types.JobSkills `json:"categories,omitempty"`
}

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path, URL or s3:// location of the document")
	extractCmd.Flags().StringVar(&extractText, "text", "", "Inline text (instead of --in)")
	extractCmd.Flags().StringVar(&extractKind, "kind", "cv", "Document kind: job or cv")
	extractCmd.Flags().StringVarP(&extractProfile, "profile", "p", "", "Path to a scoring profile")
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Path to output JSON file (defaults to stdout)")
	extractCmd.Flags().BoolVar(&extractBrowser, "use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ *cobra.Command, _ []string) error {
	if extractKind != "job" && extractKind != "cv" {
		return fmt.Errorf("--kind must be job or cv, got %q", extractKind)
	}
	if extractInput != "" && extractText != "" {
		return fmt.Errorf("--in and --text are mutually exclusive; provide only one")
	}

	engine, err := config.LoadEngine(extractProfile)
	if err != nil {
		return fmt.Errorf("failed to load scoring profile: %w", err)
	}

	logger := newLogger(extractVerbose)
	loader := newLoader(logger, extractVerbose, extractBrowser)
	text, err := readInput(context.Background(), loader, "in", extractText, extractInput)
	if err != nil {
		return err
	}

	out := ExtractOutput{Source: extractInput, Skills: engine.Extractor.Extract(text)}
	if out.Source == "" {
		out.Source = "inline"
	}
	if extractKind == "job" {
		job := engine.Extractor.Partition(out.Skills)
		out.Categories = &job
	}

	if extractVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintSkillSet(strings.ToUpper(extractKind)+" SKILLS", out.Skills)
		if out.Categories != nil {
			printer.PrintJobSkills(*out.Categories)
		}
	}

	return writeJSON(extractOutput, out)
}
